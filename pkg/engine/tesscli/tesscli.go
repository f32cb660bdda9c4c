// Package tesscli drives the tesseract executable. Each recognition is one
// process run reading a PNG from stdin; element boxes are read back from the
// hOCR renderer's output.
package tesscli

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/hocr"
)

// DefaultPath is the executable looked up in PATH when Backend.Path is empty.
const DefaultPath = "tesseract"

// Backend runs the tesseract command line tool.
type Backend struct {
	Path string // tesseract executable
}

var _ engine.Backend = Backend{}

func (Backend) Name() string { return "tesseract-cli" }

func (b Backend) path() string {
	if b.Path == "" {
		return DefaultPath
	}
	return b.Path
}

// Languages runs tesseract --list-langs.
func (b Backend) Languages(dataDir string) ([]string, error) {
	args := []string{"--list-langs"}
	if dataDir != "" {
		args = append(args, "--tessdata-dir", dataDir)
	}
	out, err := run(b.path(), nil, args...)
	if err != nil {
		return nil, err
	}
	return parseLanguageList(out), nil
}

// Open checks the executable is reachable, reads its version and runs it
// once over a blank page so that unloadable language packs fail here.
func (b Backend) Open(opts engine.Options) (engine.Handle, error) {
	path, err := exec.LookPath(b.path())
	if err != nil {
		return nil, fmt.Errorf("tesseract executable not found: %w", err)
	}
	out, err := run(path, nil, "--version")
	if err != nil {
		return nil, err
	}
	if _, err := run(path, engine.BlankPNG(), arguments(opts, engine.Params{}, false)...); err != nil {
		return nil, fmt.Errorf("failed to load language data: %w", err)
	}
	return &Handle{path: path, opts: opts, version: parseVersion(out)}, nil
}

// Handle holds the image and params for the next run and caches the output
// of the runs made for them.
type Handle struct {
	path    string
	opts    engine.Options
	version string

	img    []byte
	params engine.Params
	text   *string
	page   *hocr.Page
	hocr   *string
}

func (h *Handle) reset() {
	h.text, h.hocr, h.page = nil, nil, nil
}

func (h *Handle) SetImage(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty image")
	}
	h.img = data
	h.reset()
	return nil
}

func (h *Handle) SetParams(p engine.Params) error {
	h.params = p
	h.reset()
	return nil
}

func (h *Handle) Text() (string, error) {
	if h.text == nil {
		out, err := h.recognize(false)
		if err != nil {
			return "", err
		}
		// the text renderer ends each page with a form feed
		s := strings.TrimSuffix(string(out), "\f")
		h.text = &s
	}
	return *h.text, nil
}

func (h *Handle) HOCR() (string, error) {
	if h.hocr == nil {
		out, err := h.recognize(true)
		if err != nil {
			return "", err
		}
		s := string(out)
		h.hocr = &s
	}
	return *h.hocr, nil
}

var levelClasses = map[engine.Level]string{
	engine.LevelBlock:     hocr.ClassArea,
	engine.LevelParagraph: hocr.ClassParagraph,
	engine.LevelLine:      hocr.ClassLine,
	engine.LevelWord:      hocr.ClassWord,
	engine.LevelSymbol:    hocr.ClassSymbol,
}

func (h *Handle) Boxes(level engine.Level) ([]engine.Box, error) {
	class, ok := levelClasses[level]
	if !ok {
		return nil, fmt.Errorf("unsupported level %v", level)
	}
	if h.page == nil {
		out, err := h.HOCR()
		if err != nil {
			return nil, err
		}
		doc, err := hocr.ParseHOCR([]byte(out))
		if err != nil {
			return nil, fmt.Errorf("failed to parse tesseract hOCR: %w", err)
		}
		if len(doc.Pages) == 0 {
			return nil, errors.New("tesseract hOCR contains no page")
		}
		h.page = &doc.Pages[0]
	}
	return boxesFrom(*h.page, level, class), nil
}

func boxesFrom(page hocr.Page, level engine.Level, class string) []engine.Box {
	elems := page.Elements(class)
	boxes := make([]engine.Box, 0, len(elems))
	for _, el := range elems {
		boxes = append(boxes, engine.Box{
			Level:      level,
			Text:       el.Text,
			BBox:       rect(el.BBox),
			Confidence: el.Confidence,
		})
	}
	return boxes
}

func rect(b hocr.BoundingBox) image.Rectangle {
	return image.Rect(
		int(math.Round(b.X1)), int(math.Round(b.Y1)),
		int(math.Round(b.X2)), int(math.Round(b.Y2)),
	)
}

func (h *Handle) Version() string { return h.version }

func (h *Handle) Close() error {
	h.img = nil
	h.reset()
	return nil
}

func (h *Handle) recognize(asHOCR bool) ([]byte, error) {
	if h.img == nil {
		return nil, errors.New("no image set")
	}
	return run(h.path, h.img, arguments(h.opts, h.params, asHOCR)...)
}

// arguments builds the command line for one run. Empty variables are left
// out since every run starts from the engine defaults.
func arguments(opts engine.Options, p engine.Params, asHOCR bool) []string {
	args := []string{"stdin", "stdout"}
	if len(opts.Languages) > 0 {
		args = append(args, "-l", opts.LanguageSelector())
	}
	args = append(args,
		"--oem", strconv.Itoa(opts.Mode.Native()),
		"--psm", strconv.Itoa(p.PageSegMode.Native()),
	)
	if opts.DataDir != "" {
		args = append(args, "--tessdata-dir", opts.DataDir)
	}

	vars := p.Variables()
	if asHOCR {
		vars[engine.VarHOCRCharBoxes] = "1"
	}
	keys := make([]string, 0, len(vars))
	for k, v := range vars {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-c", k+"="+vars[k])
	}

	if asHOCR {
		args = append(args, "hocr")
	}
	return args
}

func run(path string, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.Command(path, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("tesseract %s failed: %w: %s", args[0], err, msg)
		}
		return nil, fmt.Errorf("tesseract %s failed: %w", args[0], err)
	}
	return out, nil
}

// parseLanguageList reads --list-langs output. The first line is a heading
// naming the data directory.
func parseLanguageList(out []byte) []string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	var langs []string
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if i == 0 && strings.HasPrefix(line, "List of available languages") {
			continue
		}
		if line != "" {
			langs = append(langs, line)
		}
	}
	sort.Strings(langs)
	return langs
}

// parseVersion extracts "5.3.0" from the "tesseract 5.3.0" banner line.
func parseVersion(out []byte) string {
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	fields := strings.Fields(first)
	if len(fields) >= 2 && fields[0] == "tesseract" {
		return strings.TrimPrefix(fields[1], "v")
	}
	return strings.TrimSpace(first)
}
