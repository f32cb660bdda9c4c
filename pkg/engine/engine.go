// Package engine defines the contract between the tessera session facade and
// a Tesseract engine implementation.
//
// A Backend opens Handles. A Handle is one initialized engine instance bound
// to a fixed set of language packs and an engine mode; it is not safe for
// concurrent use. Per-call settings travel in Params and are applied in full
// before every recognition pass.
//
// Implementations:
//
// - tesslib: libtesseract through gosseract (cgo)
// - tesscli: the tesseract executable, read back through hOCR
// - enginetest: deterministic in-memory engine for tests
package engine

import (
	"image"
)

// Options are fixed for the lifetime of a Handle.
type Options struct {
	DataDir   string   // directory holding <lang>.traineddata, empty for the engine default
	Languages []string // language pack names, recognized together as one "+" joined selector
	Mode      Mode     // OCR engine mode
}

// LanguageSelector returns the languages in Tesseract's "eng+fra" form.
func (o Options) LanguageSelector() string {
	return JoinLanguages(o.Languages)
}

// Backend creates engine handles and reports installed language packs.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string
	// Open initializes a new engine handle.
	Open(opts Options) (Handle, error)
	// Languages lists the language packs available in dataDir, or in the
	// backend's default location when dataDir is empty.
	Languages(dataDir string) ([]string, error)
}

// Handle is one engine instance. Recognition results belong to the image and
// params set last; calls must not overlap.
type Handle interface {
	// SetImage hands an encoded image (PNG) to the engine.
	SetImage(data []byte) error
	// SetParams applies recognition settings for the next pass.
	SetParams(p Params) error
	// Text recognizes the current image and returns UTF-8 text as produced by the engine.
	Text() (string, error)
	// HOCR recognizes the current image and returns an hOCR document with character boxes.
	HOCR() (string, error)
	// Boxes returns the recognized elements at level, in reading order.
	Boxes(level Level) ([]Box, error)
	// Version reports the engine version.
	Version() string
	// Close releases the engine.
	Close() error
}

// Box is a recognized element with its position in image pixels.
type Box struct {
	Level      Level
	Text       string
	BBox       image.Rectangle
	Confidence float64 // 0-100
}
