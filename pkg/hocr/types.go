package hocr

// hOCR classes emitted by Tesseract.
const (
	ClassPage      = "ocr_page"
	ClassArea      = "ocr_carea"
	ClassParagraph = "ocr_par"
	ClassLine      = "ocr_line"
	ClassHeader    = "ocr_header"
	ClassCaption   = "ocr_caption"
	ClassTextFloat = "ocr_textfloat"
	ClassWord      = "ocrx_word"
	ClassSymbol    = "ocrx_cinfo"
)

// lineClasses are the classes Tesseract uses for a line of text.
var lineClasses = []string{ClassLine, ClassHeader, ClassCaption, ClassTextFloat}

// HOCR represents the entire hOCR document structure
type HOCR struct {
	Title       string            // Document title
	Description string            // Document description
	Language    string            // Document language
	Metadata    map[string]string // ocr-system, ocr-capabilities, ocr-langs, ocr-number-of-pages
	Pages       []Page            // Pages in the document
}

// Page is one page of recognized text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID         string            // Unique identifier
	Title      string            // Original title attribute
	PageNumber int               // ppageno, zero based as Tesseract writes it
	ImageName  string            // Source image filename
	Lang       string            // Language code for this page
	BBox       BoundingBox       // Page coordinates, equal to the image size in pixels
	Areas      []Area            // Content areas (Tesseract blocks)
	Paragraphs []Paragraph       // Paragraphs directly under page
	Lines      []Line            // Lines directly under page (no parent)
	Metadata   map[string]string // Other page properties
}

// Class assign 'ocr_page' to 'Page' struct
func (Page) Class() string { return ClassPage }

// Area is a Tesseract block.
// Corresponds to hOCR element with class: 'ocr_carea'
type Area struct {
	ID         string
	Lang       string
	BBox       BoundingBox
	Paragraphs []Paragraph
	Lines      []Line
	Words      []Word // Words directly under area (no line parent)
	Metadata   map[string]string
}

// Class assign 'ocr_carea' to 'Area' struct
func (Area) Class() string { return ClassArea }

// Paragraph corresponds to hOCR element with class: 'ocr_par'
type Paragraph struct {
	ID       string
	Lang     string
	BBox     BoundingBox
	Lines    []Line
	Words    []Word // Words directly under paragraph (no line parent)
	Metadata map[string]string
}

// Class assign 'ocr_par' to 'Paragraph' struct
func (Paragraph) Class() string { return ClassParagraph }

// Line represents a line of text. Tesseract marks headers, captions and
// floating text with their own classes; Kind keeps the one that was parsed.
type Line struct {
	ID       string
	Kind     string // one of ocr_line, ocr_header, ocr_caption, ocr_textfloat
	Lang     string
	BBox     BoundingBox
	Baseline string
	Size     float64 // x_size
	Words    []Word
	Metadata map[string]string
}

// Class returns the line's hOCR class, 'ocr_line' unless Kind says otherwise.
func (l Line) Class() string {
	if l.Kind == "" {
		return ClassLine
	}
	return l.Kind
}

// Word is a recognized word with bounding box
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID         string
	Text       string
	BBox       BoundingBox
	Confidence float64 // x_wconf, 0-100
	Lang       string
	Symbols    []Symbol // present when Tesseract ran with hocr_char_boxes
	Metadata   map[string]string
}

// Class assign 'ocrx_word' to 'Word' struct
func (Word) Class() string { return ClassWord }

// Symbol is a single recognized character.
// Corresponds to hOCR element with class: 'ocrx_cinfo'
type Symbol struct {
	Text       string
	BBox       BoundingBox // x_bboxes
	Confidence float64     // x_conf
}

// Class assign 'ocrx_cinfo' to 'Symbol' struct
func (Symbol) Class() string { return ClassSymbol }

// BoundingBox represents a rectangle in the document
// Used to store hOCR 'bbox' property values
type BoundingBox struct {
	X1 float64 // Left coordinate
	Y1 float64 // Top coordinate
	X2 float64 // Right coordinate
	Y2 float64 // Bottom coordinate
}

// NewBoundingBox creates a bounding box from the x1, y1, x2, y2 values of an
// hOCR 'bbox' property, top-left corner first.
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width of the box.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height of the box.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// Scale multiplies every coordinate by f.
func (b BoundingBox) Scale(f float64) BoundingBox {
	return BoundingBox{X1: b.X1 * f, Y1: b.Y1 * f, X2: b.X2 * f, Y2: b.Y2 * f}
}

// Element is a flattened view of any node in the page hierarchy.
type Element struct {
	Class      string
	ID         string
	Text       string
	BBox       BoundingBox
	Confidence float64
}
