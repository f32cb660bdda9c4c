package pdfocr

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/tessera/pkg/hocr"
)

type transformFunc func(x, y float64) (float64, float64)

// scaleBy maps hOCR pixel coordinates to PDF points.
func scaleBy(f float64) transformFunc {
	return func(x, y float64) (float64, float64) {
		return x * f, y * f
	}
}

// LayerTitle is the optional content group name used for page pageNum.
func LayerTitle(layerName string, pageNum int) string {
	if pageNum > 0 {
		return fmt.Sprintf("%s (Page %d)", layerName, pageNum)
	}
	return layerName
}

// drawOCRLayer draws the words of page onto their own layer of the current
// pdf page. pageNum makes the layer name unique per page.
func drawOCRLayer(
	pdf *fpdf.Fpdf,
	page hocr.Page,
	config OCRConfig,
	pageNum int,
	transform transformFunc,
) error {
	fontConfig := config.Font
	layer := pdf.AddLayer(LayerTitle(config.LayerName, pageNum), true)
	pdf.BeginLayer(layer)
	pdf.SetFont(fontConfig.Name, fontConfig.Style, fontConfig.Size)

	if config.Debug {
		pdf.SetTextColor(255, 0, 0) // highlight text in red
		pdf.SetDrawColor(255, 0, 0)
	} else {
		pdf.SetAlpha(0.0, "Normal") // hide text from normal view
	}

	encodingErrors := 0
	words := page.Words()
	for _, word := range words {
		if !drawWord(pdf, word, transform, fontConfig, config.Debug) {
			encodingErrors++
		}
	}

	if config.Debug {
		pdf.SetTextColor(0, 0, 0)
		pdf.SetDrawColor(0, 0, 0)
	} else {
		pdf.SetAlpha(1.0, "Normal")
	}
	pdf.EndLayer()

	config.Logger.Debug().
		Int("page", pageNum).
		Int("words", len(words)).
		Int("encoding_errors", encodingErrors).
		Msg("Drew OCR layer")

	// a few unencodable words are tolerated
	if len(words) > 0 && encodingErrors > len(words)/10 {
		return fmt.Errorf("character encoding issues in %d of %d words",
			encodingErrors, len(words))
	}
	return pdf.Error()
}

// drawWord renders a single word stretched to its box. It reports false when
// the text could not be encoded for the core font.
func drawWord(pdf *fpdf.Fpdf, word hocr.Word, transform transformFunc,
	fontConfig FontConfig, debug bool) bool {

	x, y := transform(word.BBox.X1, word.BBox.Y1)
	x2, y2 := transform(word.BBox.X2, word.BBox.Y2)
	wordWidth := x2 - x

	// Convert text to ISO-8859-1 to avoid PDF encoding issues
	encoded := true
	latin1, err := charmap.ISO8859_1.NewEncoder().String(word.Text)
	if err != nil {
		encoded = false
		latin1 = word.Text
	}

	strWidth := pdf.GetStringWidth(latin1)
	if strWidth > 0 && wordWidth > 0 {
		pdf.SetFontSize(fontConfig.Size * wordWidth / strWidth)
	}

	fontSize, _ := pdf.GetFontSize()
	baseline := y + fontSize*fontConfig.AscentRatio

	pdf.Text(x, baseline, latin1)
	pdf.SetFontSize(fontConfig.Size)

	if debug {
		pdf.Rect(x, y, wordWidth, y2-y, "D")
	}
	return encoded
}
