// Package tessera is a session facade over the Tesseract OCR engine.
//
// A Session owns one engine handle bound to a set of language packs. It turns
// images into recognized text and bounding-box blocks, and pages of images
// into searchable PDFs:
//
//	s, err := tessera.New([]tessera.Language{tessera.English}, tessera.Options{})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	res, err := s.PerformOCR(img)
//
// Calls on one Session are serialized; use a Pool for parallel recognition.
package tessera

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/hocr"
	"github.com/gardar/tessera/pkg/pdfocr"
)

// Options configure a Session.
type Options struct {
	Backend engine.Backend    // engine implementation, DefaultBackend when nil
	DataDir string            // trained data directory, resolved by the backend when empty
	Mode    Mode              // OCR engine mode, fixed for the session
	Config  *Config           // initial recognition config, DefaultConfig when nil
	PDF     *pdfocr.OCRConfig // searchable PDF options, pdfocr.DefaultConfig when nil
	Logger  zerolog.Logger    // silent when unset
}

// Session is one engine handle with its configuration and last result.
type Session struct {
	langs []Language
	pdf   pdfocr.OCRConfig
	log   zerolog.Logger

	// sem holds the handle; a pass owns it from SetImage to the last read
	sem    chan struct{}
	handle engine.Handle

	mu     sync.Mutex
	config Config
	last   *Result
	closed bool
}

// New loads the language packs and opens an engine handle. Every language
// must have trained data installed, otherwise New fails with a
// LanguageLoadError naming the first missing one. No languages means English.
func New(langs []Language, opts Options) (*Session, error) {
	langs = normalizeLanguages(langs)
	backend := opts.Backend
	if backend == nil {
		backend = DefaultBackend()
	}
	log := opts.Logger.With().Str("backend", backend.Name()).Logger()

	installed, err := backend.Languages(opts.DataDir)
	if err != nil {
		return nil, &Error{Kind: LanguageLoadError, Op: "list languages", Language: langs[0], Err: err}
	}
	for _, l := range langs {
		if !slices.Contains(installed, l.Code()) {
			return nil, &Error{
				Kind:     LanguageLoadError,
				Op:       "load language",
				Language: l,
				Err:      fmt.Errorf("no trained data for %q among %v", l.Code(), installed),
			}
		}
	}

	handle, err := backend.Open(engine.Options{
		DataDir:   opts.DataDir,
		Languages: codes(langs),
		Mode:      opts.Mode,
	})
	if err != nil {
		return nil, &Error{Kind: LanguageLoadError, Op: "open engine", Language: langs[0], Err: err}
	}

	config := DefaultConfig()
	if opts.Config != nil {
		config = opts.Config.clone()
	}
	pdfConfig := pdfocr.DefaultConfig()
	if opts.PDF != nil {
		pdfConfig = *opts.PDF
	}
	pdfConfig.Logger = log

	s := &Session{
		langs:  langs,
		pdf:    pdfConfig,
		log:    log,
		sem:    make(chan struct{}, 1),
		handle: handle,
		config: config,
	}
	log.Debug().Strs("languages", codes(langs)).Str("mode", opts.Mode.String()).Msg("Session opened")
	return s, nil
}

// MustNew is New that panics on error.
func MustNew(langs []Language, opts Options) *Session {
	s, err := New(langs, opts)
	if err != nil {
		panic(err)
	}
	return s
}

// Config returns a copy of the session's recognition config.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.clone()
}

// SetConfig replaces the config used by PerformOCR. The handle is kept.
func (s *Session) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg.clone()
}

// Languages returns the session's language packs.
func (s *Session) Languages() []Language { return slices.Clone(s.langs) }

// Version reports the engine version.
func (s *Session) Version() string {
	if err := s.acquire(context.Background()); err != nil {
		return ""
	}
	defer s.release()
	return s.handle.Version()
}

// PerformOCR recognizes img with the session's config.
func (s *Session) PerformOCR(img image.Image) (*Result, error) {
	return s.perform(context.Background(), img, s.Config(), false)
}

// PerformOCRWithConfig recognizes img with cfg for this call only.
func (s *Session) PerformOCRWithConfig(img image.Image, cfg Config) (*Result, error) {
	return s.perform(context.Background(), img, cfg, false)
}

// PerformOCRBytes decodes an encoded image and recognizes it.
func (s *Session) PerformOCRBytes(data []byte) (*Result, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return s.PerformOCR(img)
}

// RecognizedBlocks returns the blocks at level from the last successful
// pass, or nil before any pass succeeded.
func (s *Session) RecognizedBlocks(level Level) []Block {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	return last.Blocks(level)
}

// Close releases the engine handle. It waits for a running pass and is
// safe to call more than once.
func (s *Session) Close() error {
	s.sem <- struct{}{}
	defer s.release()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.last = nil
	s.log.Debug().Msg("Session closed")
	if err := s.handle.Close(); err != nil {
		return newError(EngineRecognitionError, "close", err)
	}
	return nil
}

// acquire takes the handle, giving up when ctx ends first.
func (s *Session) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		s.release()
		return newError(EngineRecognitionError, "recognize", ErrSessionClosed)
	}
	return nil
}

func (s *Session) release() { <-s.sem }

// perform runs one pass. The context only bounds the wait for the handle.
func (s *Session) perform(ctx context.Context, img image.Image, cfg Config, withHOCR bool) (*Result, error) {
	data, size, err := encodeImage(img)
	if err != nil {
		return nil, err
	}
	return s.performEncoded(ctx, data, size, cfg, withHOCR)
}

func (s *Session) performEncoded(ctx context.Context, data []byte, size image.Point, cfg Config, withHOCR bool) (*Result, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	res, err := s.recognize(data, cfg, withHOCR)
	s.release()
	if err != nil {
		s.log.Debug().Err(err).Msg("Recognition failed")
		return nil, err
	}
	res.Size = size

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res, nil
}

// recognize runs a pass on the held handle.
func (s *Session) recognize(data []byte, cfg Config, withHOCR bool) (*Result, error) {
	h := s.handle
	if err := h.SetImage(data); err != nil {
		return nil, newError(ImageConversionError, "set image", err)
	}
	if err := h.SetParams(cfg.params()); err != nil {
		return nil, newError(EngineRecognitionError, "set params", err)
	}

	text, err := h.Text()
	if err != nil {
		return nil, newError(EngineRecognitionError, "recognize", err)
	}
	res := &Result{Text: text, blocks: make(map[Level][]Block)}
	for _, level := range cfg.levels() {
		boxes, err := h.Boxes(level)
		if err != nil {
			return nil, newError(EngineRecognitionError, fmt.Sprintf("recognize %s blocks", level), err)
		}
		res.blocks[level] = blocksFrom(boxes)
	}

	if withHOCR {
		out, err := h.HOCR()
		if err != nil {
			return nil, newError(EngineRecognitionError, "recognize hocr", err)
		}
		doc, err := hocr.ParseHOCR([]byte(out))
		if err != nil {
			return nil, newError(EngineRecognitionError, "parse hocr", err)
		}
		if len(doc.Pages) == 0 {
			return nil, newError(EngineRecognitionError, "parse hocr", fmt.Errorf("engine produced no hOCR page"))
		}
		res.Page = &doc.Pages[0]
	}

	s.log.Debug().Int("chars", len(text)).Int("levels", len(res.blocks)).Bool("hocr", withHOCR).Msg("Recognized image")
	return res, nil
}
