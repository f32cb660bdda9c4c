package pdfocr

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/tessera/pkg/hocr"
)

// modifyExistingPDF imports pages from an existing PDF and overlays OCR text layer.
// hOCR page i lands on input page StartPage+i.
func modifyExistingPDF(
	inputPDFData []byte,
	doc hocr.HOCR,
	config OCRConfig,
) (out []byte, err error) {
	// the importer panics on malformed input
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to import PDF: %v", r)
		}
	}()

	scale := config.scale()
	pdf := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(inputPDFData))

	for i, page := range doc.Pages {
		targetPage := i + config.StartPage
		w, h := page.BBox.X2*scale, page.BBox.Y2*scale
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("hOCR page %d has no size", i+1)
		}

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		tpl := importer.ImportPageFromStream(pdf, &rs, targetPage, "/MediaBox")
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, 0)

		if err := drawOCRLayer(pdf, page, config, targetPage, scaleBy(scale)); err != nil {
			return nil, fmt.Errorf("failed to draw OCR layer for page %d: %w", targetPage, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
