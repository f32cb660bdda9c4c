package pdfocr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Info describes a PDF as read back by Inspect.
type Info struct {
	Pages int      // number of pages
	Text  []string // plain text per page, empty for pages without text
}

// HasText reports whether any page yields non-blank text.
func (i Info) HasText() bool {
	for _, t := range i.Text {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

// Inspect reads the page count and the plain text of every page.
func Inspect(pdfData []byte) (info Info, err error) {
	if len(pdfData) == 0 {
		return Info{}, fmt.Errorf("empty PDF data")
	}
	// the reader panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			info, err = Info{}, fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return Info{}, fmt.Errorf("failed to open PDF: %w", err)
	}

	info.Pages = reader.NumPage()
	info.Text = make([]string, info.Pages)
	for i := 1; i <= info.Pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Info{}, fmt.Errorf("failed to extract text of page %d: %w", i, err)
		}
		info.Text[i-1] = text
	}
	return info, nil
}
