package pdfocr

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gabriel-vasile/mimetype"

	"github.com/gardar/tessera/pkg/hocr"
)

// createPDFFromImage builds a new PDF from images with their corresponding OCR data.
// This function assumes inputs have been validated by the caller.
func createPDFFromImage(
	doc hocr.HOCR,
	imagesData [][]byte,
	config OCRConfig,
) ([]byte, error) {
	startIdx := config.StartPage - 1
	scale := config.scale()
	pdf := fpdf.New("P", "pt", "A4", "")

	for i := startIdx; i < len(doc.Pages) && i < len(imagesData); i++ {
		page := doc.Pages[i]
		w, h := page.BBox.X2*scale, page.BBox.Y2*scale
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("page %d has no size", i+1)
		}

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		imageName := fmt.Sprintf("img%d", i)
		imageType, err := detectImageType(imagesData[i])
		if err != nil {
			return nil, fmt.Errorf("failed to detect image type for image %d: %w", i+1, err)
		}

		opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
		pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(imagesData[i]))
		pdf.ImageOptions(imageName, 0, 0, w, h, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to place image %d: %w", i+1, err)
		}

		if err := drawOCRLayer(pdf, page, config, i+1, scaleBy(scale)); err != nil {
			return nil, fmt.Errorf("failed to draw OCR layer for page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// fpdfImageTypes maps the image formats fpdf can embed to its type names.
var fpdfImageTypes = map[string]string{
	"image/png":  "PNG",
	"image/jpeg": "JPEG",
	"image/gif":  "GIF",
}

// detectImageType sniffs the content type and returns the fpdf image type.
func detectImageType(data []byte) (string, error) {
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if t, ok := fpdfImageTypes[m.String()]; ok {
			return t, nil
		}
	}
	return "", fmt.Errorf("unsupported image type %s", mtype.String())
}
