package enginetest

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/hocr"
)

func openWithImage(t *testing.T, b *Backend) engine.Handle {
	t.Helper()
	h, err := b.Open(engine.Options{Languages: []string{"eng"}})
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 100))))
	require.NoError(t, h.SetImage(buf.Bytes()))
	return h
}

func TestOpenUnknownLanguage(t *testing.T) {
	b := &Backend{}
	_, err := b.Open(engine.Options{Languages: []string{"eng", "klingon"}})
	assert.ErrorContains(t, err, "klingon")
	assert.Equal(t, 0, b.Opened())
}

func TestText(t *testing.T) {
	b := &Backend{TextFor: func(image.Image) string { return "abc 123\n\nxyz" }}
	h := openWithImage(t, b)

	text, err := h.Text()
	require.NoError(t, err)
	assert.Equal(t, "abc 123\nxyz\n", text)
	assert.Equal(t, 1, b.Passes())
}

func TestFilter(t *testing.T) {
	assert.Equal(t, " 123", Filter("abc 123", "0123456789", ""))
	assert.Equal(t, "abc ", Filter("abc 123", "", "0123456789"))
	assert.Equal(t, "a\nb", Filter("a1\nb2", "ab", "2"))
}

func TestBoxes(t *testing.T) {
	h := openWithImage(t, &Backend{TextFor: func(image.Image) string { return "ab cd" }})

	symbols, err := h.Boxes(engine.LevelSymbol)
	require.NoError(t, err)
	require.Len(t, symbols, 4)
	assert.Equal(t, "a", symbols[0].Text)
	assert.Equal(t, image.Rect(Margin, Margin, Margin+CharWidth, Margin+GlyphHeight), symbols[0].BBox)
	assert.Equal(t, image.Rect(Margin+3*CharWidth, Margin, Margin+4*CharWidth, Margin+GlyphHeight), symbols[2].BBox)

	words, err := h.Boxes(engine.LevelWord)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "cd", words[1].Text)
	assert.Equal(t, float64(Confidence), words[1].Confidence)

	lines, err := h.Boxes(engine.LevelLine)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "ab cd", lines[0].Text)

	blocks, err := h.Boxes(engine.LevelBlock)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
}

func TestHOCRParsesBack(t *testing.T) {
	h := openWithImage(t, &Backend{TextFor: func(image.Image) string { return "first line\nsecond" }})

	out, err := h.HOCR()
	require.NoError(t, err)

	doc, err := hocr.ParseHOCR([]byte(out))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	page := doc.Pages[0]
	assert.Equal(t, float64(300), page.BBox.X2)
	assert.Equal(t, float64(100), page.BBox.Y2)
	assert.Equal(t, "first line\nsecond\n", page.Text())
	assert.Len(t, page.Elements(hocr.ClassSymbol), 15)
}

func TestRecognitionError(t *testing.T) {
	b := &Backend{Err: assert.AnError}
	h := openWithImage(t, b)

	_, err := h.Text()
	assert.ErrorIs(t, err, assert.AnError)
}

func TestClosedHandle(t *testing.T) {
	b := &Backend{}
	h := openWithImage(t, b)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 1, b.Closed())

	_, err := h.Text()
	assert.Error(t, err)
}

func TestRenderText(t *testing.T) {
	img := RenderText("HI", 3)
	assert.Equal(t, (2*7+2*Margin)*3, img.Bounds().Dx())
	assert.Equal(t, (13+2*Margin)*3, img.Bounds().Dy())
}
