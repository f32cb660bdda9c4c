package tessera

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/gardar/tessera/pkg/pdfocr"
)

// DefaultDPI is the rasterizing resolution used when none is given.
const DefaultDPI = 300

// RasterizePDF renders every page of a PDF at dpi with MuPDF.
func RasterizePDF(data []byte, dpi float64) ([]image.Image, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, newError(ImageConversionError, "open pdf", err)
	}
	defer doc.Close()

	pages := make([]image.Image, doc.NumPage())
	for i := range pages {
		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return nil, &Error{Kind: ImageConversionError, Op: "rasterize pdf", Page: i + 1, Err: err}
		}
		pages[i] = img
	}
	return pages, nil
}

// ApplyToPDF makes an existing PDF searchable: each page is rasterized at
// dpi, recognized, and overlaid with an OCR text layer. PDFs that already
// carry an OCR layer are refused unless the session's PDF options set Force.
func (s *Session) ApplyToPDF(data []byte, dpi float64) ([]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	images, err := RasterizePDF(data, dpi)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, newError(ImageConversionError, "apply to pdf", fmt.Errorf("pdf has no pages"))
	}
	pages, err := s.recognizeAll(context.Background(), images)
	if err != nil {
		return nil, err
	}
	return applyPDF(data, pages, s.pdf, s.langs, dpi)
}

func applyPDF(data []byte, pages []recognizedPage, config pdfocr.OCRConfig, langs []Language, dpi float64) ([]byte, error) {
	config.StartPage = 1
	config.DPI = dpi
	out, err := pdfocr.ApplyOCR(data, document(pages, langs), config)
	if err != nil {
		return nil, newError(EngineRecognitionError, "apply to pdf", err)
	}
	return out, nil
}
