package pdfocr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrOCRLayerExists is returned by ApplyOCR for a PDF that already has an OCR layer.
var ErrOCRLayerExists = errors.New("file already has OCR, set Force to reapply")

// ocgPatterns find optional content group names in raw PDF data.
var ocgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*\(([^)]+)\)`),
	regexp.MustCompile(`/Title\s*\(([^)]+)\)`),
	regexp.MustCompile(`/OCG\s*<<[^>]*?/Name\s*\(([^)]+)\)`),
	regexp.MustCompile(`<</Type/OCG/Name\(([^)]+)\)`),
	regexp.MustCompile(`/OCProperties.*?/OCGs\s*\[\s*.*?/Name\s*\(([^)]+)\)`),
	regexp.MustCompile(`/Name\s*\(([^)]+)\)[\s\S]{1,50}/Type\s*/OCG`),
}

// detectPDFLayers attempts to find layer names in the raw PDF data.
func detectPDFLayers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	content := string(pdfData)
	var layers []string
	for _, regex := range ocgPatterns {
		for _, match := range regex.FindAllStringSubmatch(content, -1) {
			if len(match) >= 2 {
				layers = append(layers, unescapePDFString(match[1]))
			}
		}
	}

	// names written as UTF-16 carry a byte order mark
	for i, layer := range layers {
		if strings.HasPrefix(layer, "\xfe\xff") {
			if decoded, err := decodeUTF16BE([]byte(layer)); err == nil {
				layers[i] = decoded
			}
		}
	}

	unique := make([]string, 0, len(layers))
	seen := make(map[string]bool)
	for _, l := range layers {
		if !seen[l] {
			seen[l] = true
			unique = append(unique, l)
		}
	}
	return unique, nil
}

// LayerCheckResult contains the results of checking for OCR layers
type LayerCheckResult struct {
	Layers       []string // All detected layers
	HasOCRLayer  bool     // True if the specified OCR layer exists
	OCRLayerName string   // Name of the detected OCR layer (if any)
	Warnings     []string // Any warnings about potential OCR layers
}

// CheckExistingOCRLayers checks for existing OCR layers in a PDF
func CheckExistingOCRLayers(pdfData []byte, ocrLayerName string) (LayerCheckResult, error) {
	result := LayerCheckResult{}

	layers, err := detectPDFLayers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	// lenient about spacing inside the page suffix
	pageLayerPattern := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*\d+.*`, regexp.QuoteMeta(ocrLayerName)))

	for _, layer := range layers {
		if layer == ocrLayerName || pageLayerPattern.MatchString(layer) {
			result.HasOCRLayer = true
			result.OCRLayerName = layer
			break
		}

		if strings.Contains(strings.ToLower(layer), "ocr") &&
			!strings.HasPrefix(layer, ocrLayerName) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Existing layer detected that might contain OCR: %s", layer))
		}
	}

	return result, nil
}

// OCRDetectionResult contains comprehensive OCR detection information
type OCRDetectionResult struct {
	HasOCR      bool // True if any OCR is detected by any method
	HasLayerOCR bool // True if OCR layers are detected
	HasText     bool // True if any page already yields extractable text

	LayerInfo LayerCheckResult // Details from layer detection

	Warnings []string // Warnings from any detection method
}

// DetectOCR reports OCR layers named after config.LayerName and whether
// the pages already carry extractable text.
func DetectOCR(pdfData []byte, config OCRConfig) (OCRDetectionResult, error) {
	config = config.withDefaults()
	result := OCRDetectionResult{}

	layerResult, err := CheckExistingOCRLayers(pdfData, config.LayerName)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Layer detection error: %v", err))
	} else {
		result.LayerInfo = layerResult
		result.HasLayerOCR = layerResult.HasOCRLayer
		result.Warnings = append(result.Warnings, layerResult.Warnings...)
		if !result.HasLayerOCR && len(layerResult.Warnings) > 0 {
			result.Warnings = append(result.Warnings, "Potential OCR layers were detected")
		}
	}

	if info, err := Inspect(pdfData); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Text extraction error: %v", err))
	} else {
		result.HasText = info.HasText()
	}

	result.HasOCR = result.HasLayerOCR
	return result, nil
}
