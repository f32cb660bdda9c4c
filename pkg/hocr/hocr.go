// Package hocr implements parsing, manipulation, and generation of hOCR data,
// the HTML-based format Tesseract uses to report recognized text together
// with its layout.
//
// The object model follows the hierarchy Tesseract writes:
// Document → Pages → Areas (blocks) → Paragraphs → Lines → Words → Symbols.
// Lines may carry any of Tesseract's line classes (ocr_line, ocr_header,
// ocr_caption, ocr_textfloat). Symbols are read from ocrx_cinfo spans, which
// Tesseract emits when hocr_char_boxes is enabled.
//
// Key Types:
//
// - HOCR: Top-level structure representing an entire hOCR document
// - Page: a single page with class 'ocr_page'; its bbox is the image size
// - Area, Paragraph, Line, Word, Symbol: the nested layout elements
// - BoundingBox: a rectangle in page pixel coordinates
// - Element: a flattened view of any element, see Page.Elements
//
// Main Functions:
//
// - ParseHOCR: Parses hOCR data from HTML into the object model
// - GenerateHOCRDocument: Generates valid hOCR HTML from the object model
// - ExtractHOCRText, Page.Text, Page.Words: text in reading order
// - Page.Scale: converts page geometry, e.g. from pixels to PDF points
package hocr
