package pdfocr

import (
	"bytes"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
)

func unescapePDFString(s string) string {
	s = strings.ReplaceAll(s, "\\(", "(")
	s = strings.ReplaceAll(s, "\\)", ")")
	s = strings.ReplaceAll(s, "\\\\", "\\")
	return s
}

// decodeUTF16BE decodes a PDF text string that starts with a byte order mark.
func decodeUTF16BE(b []byte) (string, error) {
	out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// dumpPDFStructure is a debug utility that logs the first byteCount bytes
// of the PDF plus the context of the first /OCG reference.
func dumpPDFStructure(pdfData []byte, byteCount int, log zerolog.Logger) {
	byteCount = min(byteCount, len(pdfData))
	log.Debug().Int("bytes", byteCount).Str("head", string(pdfData[:byteCount])).Msg("PDF structure")

	if ocgIndex := bytes.Index(pdfData, []byte("/OCG")); ocgIndex >= 0 {
		start := max(ocgIndex-20, 0)
		end := min(ocgIndex+100, len(pdfData))
		log.Debug().Int("offset", ocgIndex).Str("context", string(pdfData[start:end])).Msg("PDF OCG context")
	}
}
