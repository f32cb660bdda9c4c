// Package pdfocr turns hOCR recognition output into searchable PDFs.
//
// A searchable PDF carries the page image plus an invisible text layer with
// every recognized word placed over its bounding box. The text is:
// - Fully searchable
// - Selectable with mouse drag operations
// - Grouped in an optional content layer per page that readers can toggle
//
// Main Functions:
//
// - AssembleWithOCR: Creates a new PDF from page images and their hOCR
// - ApplyOCR: Adds an OCR text layer to an existing PDF
// - DetectOCR: Reports whether a PDF already carries an OCR layer
// - Inspect: Reads the page count and page text back from a PDF
package pdfocr

import (
	"fmt"

	"github.com/gardar/tessera/pkg/hocr"
)

// resolveHOCR accepts raw hOCR ([]byte or string) or a parsed *hocr.HOCR.
func resolveHOCR(hocrInput interface{}) (hocr.HOCR, error) {
	switch h := hocrInput.(type) {
	case []byte:
		doc, err := hocr.ParseHOCR(h)
		if err != nil {
			return hocr.HOCR{}, fmt.Errorf("failed to parse HOCR data: %w", err)
		}
		return doc, nil
	case string:
		return resolveHOCR([]byte(h))
	case *hocr.HOCR:
		if h == nil {
			return hocr.HOCR{}, fmt.Errorf("HOCR struct is nil")
		}
		return *h, nil
	case hocr.HOCR:
		return h, nil
	}
	return hocr.HOCR{}, fmt.Errorf("unsupported HOCR input type: %T", hocrInput)
}

// AssembleWithOCR creates a PDF with one page per hOCR page, each showing
// the matching image under an invisible text layer.
// It accepts raw hOCR data ([]byte or string) or a parsed HOCR struct.
func AssembleWithOCR(
	hocrInput interface{},
	imagesData [][]byte,
	config OCRConfig,
) ([]byte, error) {
	doc, err := resolveHOCR(hocrInput)
	if err != nil {
		return nil, err
	}
	config = config.withDefaults()

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("HOCR data contains no pages")
	}
	if len(imagesData) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}
	if config.StartPage < 1 {
		return nil, fmt.Errorf("start page must be at least 1, got %d", config.StartPage)
	}
	if len(imagesData) < len(doc.Pages) {
		return nil, fmt.Errorf("not enough images (%d) for HOCR pages (%d)",
			len(imagesData), len(doc.Pages))
	}

	for i, imgData := range imagesData {
		if len(imgData) == 0 {
			return nil, fmt.Errorf("image %d is empty", i+1)
		}
		imageType, err := detectImageType(imgData)
		if err != nil {
			return nil, fmt.Errorf("image %d has invalid format: %w", i+1, err)
		}
		config.Logger.Debug().Int("image", i+1).Str("type", imageType).Msg("Detected image type")
	}

	finalPDF, err := createPDFFromImage(doc, imagesData, config)
	if err != nil {
		return nil, fmt.Errorf("error creating PDF from images: %w", err)
	}
	return finalPDF, nil
}

// ApplyOCR overlays hOCR text layers on the pages of an existing PDF,
// starting at config.StartPage. It refuses a PDF that already has an OCR
// layer of the same name unless config.Force is set.
// It accepts raw hOCR data ([]byte or string) or a parsed HOCR struct.
func ApplyOCR(
	inputPDFData []byte,
	hocrInput interface{},
	config OCRConfig,
) ([]byte, error) {
	doc, err := resolveHOCR(hocrInput)
	if err != nil {
		return nil, err
	}
	config = config.withDefaults()
	log := config.Logger

	if len(inputPDFData) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("HOCR data contains no pages")
	}
	if config.StartPage < 1 {
		return nil, fmt.Errorf("start page must be at least 1, got %d", config.StartPage)
	}

	if config.DumpPDF {
		dumpPDFStructure(inputPDFData, 2000, log)
	}

	layerResult, err := CheckExistingOCRLayers(inputPDFData, config.LayerName)
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	if len(layerResult.Layers) > 0 {
		log.Info().Strs("layers", layerResult.Layers).Msg("Existing layers detected in PDF")
	}
	for _, warning := range layerResult.Warnings {
		log.Warn().Msg(warning)
	}

	if layerResult.HasOCRLayer && !config.Force {
		return nil, fmt.Errorf("%w: layer '%s'", ErrOCRLayerExists, layerResult.OCRLayerName)
	} else if layerResult.HasOCRLayer {
		log.Warn().Str("layer", layerResult.OCRLayerName).
			Msg("File already has OCR; reapplying will result in duplicate OCR data")
	}

	finalPDF, err := modifyExistingPDF(inputPDFData, doc, config)
	if err != nil {
		return nil, fmt.Errorf("error modifying existing PDF: %w", err)
	}
	return finalPDF, nil
}
