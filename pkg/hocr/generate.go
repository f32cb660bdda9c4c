package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"strconv"
	"strings"
	"text/template"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var hocrTemplate = template.Must(template.New("hocr.tmpl").Funcs(template.FuncMap{
	"trim":   strings.TrimSpace,
	"esc":    html.EscapeString,
	"num":    formatNumber,
	"coords": formatCoords,
	"bbox":   func(b BoundingBox) string { return "bbox " + formatCoords(b) },
}).ParseFS(templateFS, "templates/hocr.tmpl"))

// GenerateHOCRDocument renders the HOCR struct as an XHTML hOCR document in
// the layout Tesseract writes, so the output parses back with ParseHOCR.
func GenerateHOCRDocument(doc *HOCR) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("HOCR document is nil")
	}

	var buf bytes.Buffer
	if err := hocrTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error rendering hOCR template: %w", err)
	}
	return buf.String(), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatCoords(b BoundingBox) string {
	return strings.Join([]string{
		formatNumber(b.X1), formatNumber(b.Y1), formatNumber(b.X2), formatNumber(b.Y2),
	}, " ")
}
