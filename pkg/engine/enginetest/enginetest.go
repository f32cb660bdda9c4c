// Package enginetest provides a deterministic in-memory engine.Backend.
//
// The fake engine "recognizes" whatever text TextFor returns for an image and
// lays it out on a fixed character grid, so tests can assert on text, blocks
// and hOCR without a Tesseract installation. It honors the whitelist and
// blacklist params and records overlapping calls on a handle.
package enginetest

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/hocr"
)

// Grid geometry of the fake layout, in pixels.
const (
	Margin      = 10
	CharWidth   = 10
	LineHeight  = 20
	GlyphHeight = 16
)

// Confidence reported for every fake word and symbol.
const Confidence = 95

// DefaultText is recognized when TextFor is nil.
const DefaultText = "Hello World"

// EngineVersion is what fake handles report.
const EngineVersion = "5.3.0-fake"

// Backend is a fake engine.Backend. The zero value serves English and OSD.
type Backend struct {
	Langs   []string                     // installed language packs, defaults to eng and osd
	TextFor func(img image.Image) string // text recognized for an image
	Err     error                        // when set, every recognition fails with it
	LoadErr error                        // when set, Open fails with it as an unreadable language pack would
	Delay   time.Duration                // time each recognition pass takes

	opened   atomic.Int32
	closed   atomic.Int32
	passes   atomic.Int32
	overlaps atomic.Int32

	mu      sync.Mutex
	options []engine.Options
	params  []engine.Params
}

var _ engine.Backend = (*Backend)(nil)

func (b *Backend) Name() string { return "fake" }

func (b *Backend) installed() []string {
	if b.Langs == nil {
		return []string{"eng", "osd"}
	}
	return b.Langs
}

// Languages ignores dataDir and returns the installed packs.
func (b *Backend) Languages(string) ([]string, error) {
	return slices.Clone(b.installed()), nil
}

// Open fails for a language that is not installed, as Tesseract's init does.
func (b *Backend) Open(opts engine.Options) (engine.Handle, error) {
	for _, lang := range opts.Languages {
		if !slices.Contains(b.installed(), lang) {
			return nil, fmt.Errorf("failed loading language '%s'", lang)
		}
	}
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	b.opened.Add(1)
	b.mu.Lock()
	b.options = append(b.options, opts)
	b.mu.Unlock()
	return &Handle{backend: b}, nil
}

// Opened is the number of handles opened so far.
func (b *Backend) Opened() int { return int(b.opened.Load()) }

// Closed is the number of handles closed so far.
func (b *Backend) Closed() int { return int(b.closed.Load()) }

// Passes is the number of recognition passes run on all handles.
func (b *Backend) Passes() int { return int(b.passes.Load()) }

// Overlaps counts calls that entered a handle while another call on the same
// handle was still running.
func (b *Backend) Overlaps() int { return int(b.overlaps.Load()) }

// Options returns the options of every Open call, in order.
func (b *Backend) Options() []engine.Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.options)
}

// Params returns the params of every SetParams call on any handle, in order.
func (b *Backend) Params() []engine.Params {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.params)
}

// Handle is a fake engine.Handle.
type Handle struct {
	backend *Backend
	busy    atomic.Int32
	img     image.Image
	params  engine.Params
	closed  bool
}

func (h *Handle) enter() func() {
	if h.busy.Add(1) > 1 {
		h.backend.overlaps.Add(1)
	}
	return func() { h.busy.Add(-1) }
}

func (h *Handle) SetImage(data []byte) error {
	defer h.enter()()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	h.img = img
	return nil
}

func (h *Handle) SetParams(p engine.Params) error {
	defer h.enter()()
	h.params = p
	h.backend.mu.Lock()
	h.backend.params = append(h.backend.params, p)
	h.backend.mu.Unlock()
	return nil
}

func (h *Handle) Text() (string, error) {
	defer h.enter()()
	lines, err := h.recognize()
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func (h *Handle) HOCR() (string, error) {
	defer h.enter()()
	lines, err := h.recognize()
	if err != nil {
		return "", err
	}
	doc := &hocr.HOCR{
		Metadata: map[string]string{
			"ocr-system":       "tesseract " + EngineVersion,
			"ocr-capabilities": "ocr_page ocr_carea ocr_par ocr_line ocrx_word ocrp_wconf",
		},
		Pages: []hocr.Page{Layout(lines, h.img.Bounds())},
	}
	return hocr.GenerateHOCRDocument(doc)
}

func (h *Handle) Boxes(level engine.Level) ([]engine.Box, error) {
	defer h.enter()()
	lines, err := h.recognize()
	if err != nil {
		return nil, err
	}
	page := Layout(lines, h.img.Bounds())

	var class string
	switch level {
	case engine.LevelBlock:
		class = hocr.ClassArea
	case engine.LevelParagraph:
		class = hocr.ClassParagraph
	case engine.LevelLine:
		class = hocr.ClassLine
	case engine.LevelWord:
		class = hocr.ClassWord
	case engine.LevelSymbol:
		class = hocr.ClassSymbol
	default:
		return nil, fmt.Errorf("unsupported level %v", level)
	}

	var boxes []engine.Box
	for _, el := range page.Elements(class) {
		boxes = append(boxes, engine.Box{
			Level: level,
			Text:  el.Text,
			BBox: image.Rect(
				int(el.BBox.X1), int(el.BBox.Y1), int(el.BBox.X2), int(el.BBox.Y2),
			),
			Confidence: Confidence,
		})
	}
	return boxes, nil
}

func (h *Handle) Version() string { return EngineVersion }

func (h *Handle) Close() error {
	if !h.closed {
		h.closed = true
		h.backend.closed.Add(1)
	}
	return nil
}

// recognize runs one pass and returns the filtered, non-empty lines.
func (h *Handle) recognize() ([]string, error) {
	if h.closed {
		return nil, fmt.Errorf("handle is closed")
	}
	if h.img == nil {
		return nil, fmt.Errorf("no image set")
	}
	h.backend.passes.Add(1)
	if h.backend.Delay > 0 {
		time.Sleep(h.backend.Delay)
	}
	if h.backend.Err != nil {
		return nil, h.backend.Err
	}

	text := DefaultText
	if h.backend.TextFor != nil {
		text = h.backend.TextFor(h.img)
	}
	text = Filter(text, h.params.Whitelist, h.params.Blacklist)

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// Filter drops characters outside whitelist (when set) and inside blacklist.
// Whitespace is always kept.
func Filter(text, whitelist, blacklist string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '\n' || r == '\t':
			return r
		case whitelist != "" && !strings.ContainsRune(whitelist, r):
			return -1
		case strings.ContainsRune(blacklist, r):
			return -1
		}
		return r
	}, text)
}

// Layout places lines on the fake character grid inside bounds, as one block
// holding one paragraph.
func Layout(lines []string, bounds image.Rectangle) hocr.Page {
	page := hocr.Page{
		ID:        "page_1",
		ImageName: "unknown",
		BBox:      hocr.NewBoundingBox(0, 0, float64(bounds.Dx()), float64(bounds.Dy())),
	}
	if len(lines) == 0 {
		return page
	}

	para := hocr.Paragraph{ID: "par_1_1", Lang: "eng"}
	var maxCols int
	wordN := 0
	for i, text := range lines {
		top := float64(Margin + i*LineHeight)
		line := hocr.Line{
			ID:   fmt.Sprintf("line_1_%d", i+1),
			BBox: hocr.NewBoundingBox(Margin, top, float64(Margin+len([]rune(text))*CharWidth), top+GlyphHeight),
		}
		maxCols = max(maxCols, len([]rune(text)))

		col := 0
		var word *hocr.Word
		flush := func() {
			if word != nil {
				line.Words = append(line.Words, *word)
				word = nil
			}
		}
		for _, r := range text {
			x := float64(Margin + col*CharWidth)
			col++
			if r == ' ' || r == '\t' {
				flush()
				continue
			}
			if word == nil {
				wordN++
				word = &hocr.Word{
					ID:         fmt.Sprintf("word_1_%d", wordN),
					BBox:       hocr.NewBoundingBox(x, top, x, top+GlyphHeight),
					Confidence: Confidence,
				}
			}
			box := hocr.NewBoundingBox(x, top, x+CharWidth, top+GlyphHeight)
			word.Text += string(r)
			word.BBox.X2 = box.X2
			word.Symbols = append(word.Symbols, hocr.Symbol{Text: string(r), BBox: box, Confidence: Confidence})
		}
		flush()
		if len(line.Words) > 0 {
			line.BBox.X1 = line.Words[0].BBox.X1
			line.BBox.X2 = line.Words[len(line.Words)-1].BBox.X2
		}
		para.Lines = append(para.Lines, line)
	}

	para.BBox = hocr.NewBoundingBox(Margin, Margin, float64(Margin+maxCols*CharWidth), float64(Margin+(len(lines)-1)*LineHeight+GlyphHeight))
	page.Areas = []hocr.Area{{ID: "block_1_1", BBox: para.BBox, Paragraphs: []hocr.Paragraph{para}}}
	return page
}
