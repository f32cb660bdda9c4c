package pdfocr

import (
	"github.com/rs/zerolog"
)

// PointsPerInch is the PDF user space resolution.
const PointsPerInch = 72.0

// OCRConfig holds user options for applying OCR to PDF
type OCRConfig struct {
	Debug     bool           // Draw the OCR text in red with word boxes instead of invisibly
	Force     bool           // Force reapply OCR even if layer already exists
	LayerName string         // Base name of OCR layer (page number will be appended)
	StartPage int            // Start applying OCR from this page number
	DPI       float64        // Resolution the hOCR geometry was recognized at, 0 for 1 pixel per point
	DumpPDF   bool           // Log the PDF structure for debugging
	Logger    zerolog.Logger // Destination of warnings and debug events, silent when unset
	Font      FontConfig
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() OCRConfig {
	return OCRConfig{
		LayerName: "OCR Text", // Will be formatted as "OCR Text (Page X)" in the final PDF
		StartPage: 1,
		Logger:    zerolog.Nop(),
		Font:      DefaultFont,
	}
}

// scale converts hOCR pixels to PDF points.
func (c OCRConfig) scale() float64 {
	if c.DPI <= 0 {
		return 1
	}
	return PointsPerInch / c.DPI
}

// FontConfig contains font settings for OCR text rendering
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Default font size
	AscentRatio float64 // Vertical positioning ratio
}

// DefaultFont sets the default font to Helvetica which is tried and tested for the OCR layer
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        10,
	AscentRatio: 0.718,
}

// withDefaults fills the fields a zero OCRConfig leaves empty.
func (c OCRConfig) withDefaults() OCRConfig {
	if c.LayerName == "" {
		c.LayerName = DefaultConfig().LayerName
	}
	if c.Font.Name == "" {
		c.Font = DefaultFont
	}
	if c.Font.Size <= 0 {
		c.Font.Size = DefaultFont.Size
	}
	return c
}
