package tessera

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/tessera/pkg/engine/enginetest"
)

func newSession(t *testing.T, b *enginetest.Backend, langs ...Language) *Session {
	t.Helper()
	s, err := New(langs, Options{Backend: b})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func blank(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// unconstructedImages have bounds but no usable pixel storage.
func unconstructedImages() map[string]image.Image {
	return map[string]image.Image{
		"typed nil":    (*image.RGBA)(nil),
		"no pixels":    &image.RGBA{Rect: image.Rect(0, 0, 10, 10)},
		"gray":         &image.Gray{Rect: image.Rect(0, 0, 10, 10)},
		"short pixels": &image.NRGBA{Rect: image.Rect(0, 0, 10, 10), Pix: make([]uint8, 8), Stride: 40},
	}
}

// textByWidth recognizes the text registered for an image's width.
func textByWidth(texts map[int]string) func(image.Image) string {
	return func(img image.Image) string { return texts[img.Bounds().Dx()] }
}

func TestNewDefaultsToEnglish(t *testing.T) {
	b := &enginetest.Backend{}
	s := newSession(t, b)

	assert.Equal(t, []Language{English}, s.Languages())
	require.Len(t, b.Options(), 1)
	assert.Equal(t, []string{"eng"}, b.Options()[0].Languages)
	assert.Equal(t, enginetest.EngineVersion, s.Version())
}

func TestNewMergesLanguages(t *testing.T) {
	b := &enginetest.Backend{Langs: []string{"eng", "fra", "OCRB"}}
	s, err := New([]Language{French, English, French, Custom("OCRB")}, Options{Backend: b, Mode: ModeLSTMOnly})
	require.NoError(t, err)
	defer s.Close()

	opts := b.Options()[0]
	assert.Equal(t, []string{"fra", "eng", "OCRB"}, opts.Languages)
	assert.Equal(t, "fra+eng+OCRB", opts.LanguageSelector())
	assert.Equal(t, ModeLSTMOnly, opts.Mode)
}

func TestNewMissingLanguage(t *testing.T) {
	b := &enginetest.Backend{}
	_, err := New([]Language{English, German, Spanish}, Options{Backend: b})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrLanguageLoad)
	assert.Equal(t, LanguageLoadError, KindOf(err))
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, German, e.Language)
	assert.Contains(t, err.Error(), "deu")
	assert.Equal(t, 0, b.Opened())

	assert.Panics(t, func() { MustNew([]Language{German}, Options{Backend: b}) })
}

func TestNewUnloadableLanguage(t *testing.T) {
	b := &enginetest.Backend{Langs: []string{"eng", "isl"}, LoadErr: assert.AnError}
	_, err := New([]Language{Icelandic, English}, Options{Backend: b, Mode: ModeTesseractOnly})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrLanguageLoad)
	assert.ErrorIs(t, err, assert.AnError)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, Icelandic, e.Language)
	assert.Zero(t, b.Opened())
}

func TestPerformOCR(t *testing.T) {
	b := &enginetest.Backend{TextFor: func(image.Image) string { return "Hello World" }}
	s := newSession(t, b)

	assert.Nil(t, s.RecognizedBlocks(LevelWord))

	res, err := s.PerformOCR(blank(300, 100))
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n", res.Text)
	assert.Equal(t, image.Pt(300, 100), res.Size)
	assert.Nil(t, res.Page)
	assert.Equal(t, []Level{LevelBlock, LevelParagraph, LevelLine, LevelWord, LevelSymbol}, res.Levels())

	words := res.Blocks(LevelWord)
	require.Len(t, words, 2)
	assert.Equal(t, "Hello", words[0].Text)
	assert.Equal(t, LevelWord, words[0].Level)
	assert.Less(t, words[0].BBox.Min.X, words[1].BBox.Min.X)

	symbols := s.RecognizedBlocks(LevelSymbol)
	assert.Len(t, symbols, len(strings.ReplaceAll("Hello World", " ", "")))
	assert.Len(t, s.RecognizedBlocks(LevelLine), 1)
}

func TestPerformOCRIsDeterministic(t *testing.T) {
	s := newSession(t, &enginetest.Backend{})

	first, err := s.PerformOCR(blank(200, 50))
	require.NoError(t, err)
	second, err := s.PerformOCR(blank(200, 50))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPerformOCRInvalidImage(t *testing.T) {
	b := &enginetest.Backend{}
	s := newSession(t, b)

	_, err := s.PerformOCR(nil)
	assert.ErrorIs(t, err, ErrImageConversion)

	_, err = s.PerformOCR(image.NewRGBA(image.Rectangle{}))
	assert.Equal(t, ImageConversionError, KindOf(err))

	for name, img := range unconstructedImages() {
		_, err = s.PerformOCR(img)
		assert.ErrorIs(t, err, ErrImageConversion, name)
	}
	assert.Equal(t, 0, b.Passes())
	assert.Nil(t, s.RecognizedBlocks(LevelWord))
}

func TestWhitelistAndBlacklist(t *testing.T) {
	b := &enginetest.Backend{TextFor: func(image.Image) string { return "ABC 123" }}
	s := newSession(t, b)

	cfg := DefaultConfig()
	cfg.Whitelist = "0123456789"
	res, err := s.PerformOCRWithConfig(blank(100, 40), cfg)
	require.NoError(t, err)
	assert.Equal(t, " 123\n", res.Text)
	assert.Len(t, res.Blocks(LevelSymbol), 3)

	cfg = DefaultConfig()
	cfg.Blacklist = "0123456789"
	res, err = s.PerformOCRWithConfig(blank(100, 40), cfg)
	require.NoError(t, err)
	assert.Equal(t, "ABC \n", res.Text)

	// the session config has no restriction, so nothing carries over
	res, err = s.PerformOCR(blank(100, 40))
	require.NoError(t, err)
	assert.Equal(t, "ABC 123\n", res.Text)

	params := b.Params()
	require.Len(t, params, 3)
	assert.Empty(t, params[2].Whitelist)
	assert.Empty(t, params[2].Blacklist)
}

func TestSetConfig(t *testing.T) {
	b := &enginetest.Backend{}
	s := newSession(t, b)

	cfg := Config{
		Levels:                  []Level{LevelWord, LevelWord},
		MinCharHeight:           20,
		PreserveInterwordSpaces: true,
		Variables:               map[string]string{"user_defined_dpi": "300"},
	}
	s.SetConfig(cfg)
	cfg.Variables["user_defined_dpi"] = "72"

	res, err := s.PerformOCR(blank(200, 50))
	require.NoError(t, err)
	assert.Equal(t, []Level{LevelWord}, res.Levels())
	assert.Nil(t, res.Blocks(LevelSymbol))

	vars := b.Params()[0].Variables()
	assert.Equal(t, "20", vars["textord_min_xheight"])
	assert.Equal(t, "1", vars["preserve_interword_spaces"])
	assert.Equal(t, "300", vars["user_defined_dpi"])
}

func TestEngineFailureKeepsLastResult(t *testing.T) {
	b := &enginetest.Backend{}
	s := newSession(t, b)

	_, err := s.PerformOCR(blank(200, 50))
	require.NoError(t, err)
	before := s.RecognizedBlocks(LevelWord)
	require.NotEmpty(t, before)

	b.Err = assert.AnError
	_, err = s.PerformOCR(blank(200, 50))
	assert.ErrorIs(t, err, ErrEngineRecognition)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, before, s.RecognizedBlocks(LevelWord))
}

func TestPerformOCRBytes(t *testing.T) {
	s := newSession(t, &enginetest.Backend{})

	data, err := EncodeImage(blank(120, 40))
	require.NoError(t, err)
	res, err := s.PerformOCRBytes(data)
	require.NoError(t, err)
	assert.Equal(t, enginetest.DefaultText+"\n", res.Text)

	_, err = s.PerformOCRBytes([]byte("not an image"))
	assert.ErrorIs(t, err, ErrImageConversion)
}

func TestConcurrentCallsAreSerialized(t *testing.T) {
	b := &enginetest.Backend{Delay: time.Millisecond}
	s := newSession(t, b)

	want, err := s.PerformOCR(blank(200, 50))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.PerformOCR(blank(200, 50))
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	assert.Zero(t, b.Overlaps())
	for _, res := range results {
		assert.Equal(t, want, res)
	}
}

func TestPerformOCRAsync(t *testing.T) {
	s := newSession(t, &enginetest.Backend{})

	ch := s.PerformOCRAsync(context.Background(), blank(200, 50))
	out, ok := <-ch
	require.True(t, ok)
	require.NoError(t, out.Err)
	assert.Equal(t, enginetest.DefaultText+"\n", out.Result.Text)

	_, ok = <-ch
	assert.False(t, ok, "channel is closed after the outcome")
}

func TestPerformOCRAsyncCanceledWhileQueued(t *testing.T) {
	b := &enginetest.Backend{}
	s := newSession(t, b)

	// hold the handle as a running pass would
	s.sem <- struct{}{}
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.PerformOCRAsync(ctx, blank(200, 50))
	cancel()
	out := <-ch
	s.release()

	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Nil(t, out.Result)
	assert.Zero(t, b.Passes())
}

func TestPerformOCRAsyncImageError(t *testing.T) {
	s := newSession(t, &enginetest.Backend{})
	out := <-s.PerformOCRAsync(context.Background(), nil)
	assert.ErrorIs(t, out.Err, ErrImageConversion)

	for name, img := range unconstructedImages() {
		out := <-s.PerformOCRAsync(context.Background(), img)
		assert.ErrorIs(t, out.Err, ErrImageConversion, name)
		assert.Nil(t, out.Result, name)
	}
}

func TestClose(t *testing.T) {
	b := &enginetest.Backend{}
	s, err := New(nil, Options{Backend: b})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, b.Closed())

	_, err = s.PerformOCR(blank(200, 50))
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, err, ErrEngineRecognition)
	assert.Empty(t, s.Version())
}

func TestErrorFormatting(t *testing.T) {
	err := &Error{Kind: EngineRecognitionError, Op: "create pdf", Page: 2, Err: errors.New("boom")}
	assert.Equal(t, "tessera: engine recognition in create pdf (page 2): boom", err.Error())
	assert.NotErrorIs(t, err, ErrImageConversion)
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}
