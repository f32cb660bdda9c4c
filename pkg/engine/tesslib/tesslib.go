// Package tesslib runs Tesseract in process through libtesseract, using
// gosseract's cgo bindings.
package tesslib

import (
	"fmt"
	"os"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/engine/tesscli"
)

// Backend opens gosseract clients.
type Backend struct{}

var _ engine.Backend = Backend{}

func (Backend) Name() string { return "libtesseract" }

// Languages lists the trained data files in the resolved data directory.
// Without an explicit directory, a data path that cannot be found or listed
// falls back to asking the tesseract executable, which knows the location
// compiled into the library.
func (Backend) Languages(dataDir string) ([]string, error) {
	langs, err := listDataDir(dataDir)
	if err == nil || dataDir != "" {
		return langs, err
	}
	fallback, ferr := listCompiledDefault()
	if ferr != nil {
		return nil, fmt.Errorf("%w (tesseract --list-langs: %v)", err, ferr)
	}
	return fallback, nil
}

var (
	listDataDir = func(dataDir string) ([]string, error) {
		dir, err := engine.ResolveDataDir(dataDir)
		if err != nil {
			return nil, err
		}
		return engine.TrainedData(dir)
	}
	listCompiledDefault = func() ([]string, error) {
		return tesscli.Backend{}.Languages("")
	}
)

// Open creates a client and runs one pass over a blank page, which forces
// Tesseract to load the language packs in the requested engine mode.
func (Backend) Open(opts engine.Options) (engine.Handle, error) {
	client := gosseract.NewClient()
	h := &Handle{client: client}

	if dir, err := engine.ResolveDataDir(opts.DataDir); err == nil {
		if err := client.SetTessdataPrefix(dir); err != nil {
			h.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if len(opts.Languages) > 0 {
		if err := client.SetLanguage(opts.Languages...); err != nil {
			h.Close()
			return nil, fmt.Errorf("failed to set languages: %w", err)
		}
	}
	if opts.Mode != engine.ModeDefault {
		path, err := writeModeConfig(opts.Mode)
		if err != nil {
			h.Close()
			return nil, err
		}
		h.configFile = path
		if err := client.SetConfigFile(path); err != nil {
			h.Close()
			return nil, fmt.Errorf("failed to set engine mode: %w", err)
		}
	}
	if err := client.DisableOutput(); err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to silence tesseract: %w", err)
	}
	if err := h.load(); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func (h *Handle) load() error {
	if err := h.client.SetImageFromBytes(engine.BlankPNG()); err != nil {
		return fmt.Errorf("failed to set image: %w", err)
	}
	if _, err := h.client.Text(); err != nil {
		return fmt.Errorf("failed to load language data: %w", err)
	}
	return nil
}

// writeModeConfig writes a Tesseract config file selecting the engine mode.
// The mode is read only at init, so it cannot go through SetVariable.
func writeModeConfig(mode engine.Mode) (string, error) {
	f, err := os.CreateTemp("", "tessera-oem-*.config")
	if err != nil {
		return "", fmt.Errorf("failed to create engine config: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s %d\n", engine.VarEngineMode, mode.Native()); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write engine config: %w", err)
	}
	return f.Name(), nil
}

// Handle wraps one gosseract client.
type Handle struct {
	client     *gosseract.Client
	configFile string
}

func (h *Handle) SetImage(data []byte) error {
	if err := h.client.SetImageFromBytes(data); err != nil {
		return fmt.Errorf("failed to set image: %w", err)
	}
	return nil
}

func (h *Handle) SetParams(p engine.Params) error {
	for k, v := range p.Variables() {
		if err := h.client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	if err := h.client.SetPageSegMode(gosseract.PageSegMode(p.PageSegMode.Native())); err != nil {
		return fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return nil
}

func (h *Handle) Text() (string, error) {
	text, err := h.client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}
	return text, nil
}

func (h *Handle) HOCR() (string, error) {
	if err := h.client.SetVariable(engine.VarHOCRCharBoxes, "1"); err != nil {
		return "", fmt.Errorf("failed to enable character boxes: %w", err)
	}
	out, err := h.client.HOCRText()
	if err != nil {
		return "", fmt.Errorf("failed to produce hOCR: %w", err)
	}
	return out, nil
}

func (h *Handle) Boxes(level engine.Level) ([]engine.Box, error) {
	ril, err := iteratorLevel(level)
	if err != nil {
		return nil, err
	}
	raw, err := h.client.GetBoundingBoxes(ril)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s boxes: %w", level, err)
	}

	boxes := make([]engine.Box, 0, len(raw))
	for _, b := range raw {
		boxes = append(boxes, engine.Box{
			Level:      level,
			Text:       b.Word,
			BBox:       b.Box,
			Confidence: b.Confidence,
		})
	}
	return boxes, nil
}

func iteratorLevel(level engine.Level) (gosseract.PageIteratorLevel, error) {
	switch level {
	case engine.LevelBlock:
		return gosseract.RIL_BLOCK, nil
	case engine.LevelParagraph:
		return gosseract.RIL_PARA, nil
	case engine.LevelLine:
		return gosseract.RIL_TEXTLINE, nil
	case engine.LevelWord:
		return gosseract.RIL_WORD, nil
	case engine.LevelSymbol:
		return gosseract.RIL_SYMBOL, nil
	}
	return 0, fmt.Errorf("unsupported level %v", level)
}

func (h *Handle) Version() string { return h.client.Version() }

func (h *Handle) Close() error {
	var err error
	if h.client != nil {
		err = h.client.Close()
		h.client = nil
	}
	if h.configFile != "" {
		os.Remove(h.configFile)
		h.configFile = ""
	}
	return err
}
