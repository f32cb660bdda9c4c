package tessera

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/tessera/pkg/engine/enginetest"
	"github.com/gardar/tessera/pkg/hocr"
	"github.com/gardar/tessera/pkg/pdfocr"
)

var pageTexts = map[int]string{
	300: "First page",
	301: "Second page",
	302: "Third page",
}

func threeImages() []image.Image {
	return []image.Image{blank(300, 100), blank(301, 100), blank(302, 100)}
}

func TestCreatePDF(t *testing.T) {
	s := newSession(t, &enginetest.Backend{TextFor: textByWidth(pageTexts)})

	out, err := s.CreatePDF(threeImages())
	require.NoError(t, err)

	info, err := pdfocr.Inspect(out)
	require.NoError(t, err)
	require.Equal(t, 3, info.Pages)
	assert.Contains(t, info.Text[0], "First")
	assert.Contains(t, info.Text[1], "Second")
	assert.Contains(t, info.Text[2], "Third")

	detection, err := pdfocr.DetectOCR(out, pdfocr.DefaultConfig())
	require.NoError(t, err)
	assert.True(t, detection.HasOCR)

	res := s.RecognizedBlocks(LevelWord)
	require.Len(t, res, 2)
	assert.Equal(t, "Third", res[0].Text)
}

func TestCreatePDFPageFailure(t *testing.T) {
	s := newSession(t, &enginetest.Backend{})

	_, err := s.CreatePDF([]image.Image{blank(300, 100), image.NewRGBA(image.Rectangle{})})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageConversion)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 2, e.Page)

	_, err = s.CreatePDF([]image.Image{blank(300, 100), &image.Gray{Rect: image.Rect(0, 0, 10, 10)}})
	require.ErrorIs(t, err, ErrImageConversion)
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 2, e.Page)

	_, err = s.CreatePDF(nil)
	assert.Error(t, err)
}

func TestEncodeImageUnconstructed(t *testing.T) {
	for name, img := range unconstructedImages() {
		data, err := EncodeImage(img)
		assert.Nil(t, data, name)
		assert.Equal(t, ImageConversionError, KindOf(err), name)
	}

	data, err := EncodeImage(blank(4, 3))
	require.NoError(t, err)
	img, err := DecodeImage(data)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 3), img.Bounds().Size())
}

func TestCreatePDFEngineFailure(t *testing.T) {
	b := &enginetest.Backend{Err: assert.AnError}
	s := newSession(t, b)

	_, err := s.CreatePDF([]image.Image{blank(300, 100)})
	assert.ErrorIs(t, err, ErrEngineRecognition)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHOCR(t *testing.T) {
	s := newSession(t, &enginetest.Backend{Langs: []string{"eng", "isl"}, TextFor: textByWidth(pageTexts)}, Icelandic, English)

	doc, err := s.HOCR(threeImages()[:2])
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, "2", doc.Metadata["ocr-number-of-pages"])
	assert.Equal(t, "isl+eng", doc.Metadata["ocr-langs"])
	assert.Equal(t, "page_2", doc.Pages[1].ID)
	assert.Equal(t, 1, doc.Pages[1].PageNumber)
	assert.Equal(t, float64(301), doc.Pages[1].BBox.X2)
	assert.Equal(t, "Second page\n", doc.Pages[1].Text())

	raw, err := hocr.GenerateHOCRDocument(doc)
	require.NoError(t, err)
	parsed, err := hocr.ParseHOCR([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "First page\n\nSecond page\n\n", hocr.ExtractHOCRText(&parsed))
}

func blankPDF(t *testing.T, pages int) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "", "")
	for range pages {
		doc.AddPageFormat("P", fpdf.SizeType{Wd: 300, Ht: 100})
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestRasterizePDF(t *testing.T) {
	pages, err := RasterizePDF(blankPDF(t, 2), 144)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.InDelta(t, 600, pages[0].Bounds().Dx(), 2)
	assert.InDelta(t, 200, pages[0].Bounds().Dy(), 2)

	_, err = RasterizePDF([]byte("not a pdf"), 72)
	assert.ErrorIs(t, err, ErrImageConversion)
}

func TestApplyToPDF(t *testing.T) {
	s := newSession(t, &enginetest.Backend{})

	out, err := s.ApplyToPDF(blankPDF(t, 1), 144)
	require.NoError(t, err)

	info, err := pdfocr.Inspect(out)
	require.NoError(t, err)
	require.Equal(t, 1, info.Pages)
	assert.Contains(t, info.Text[0], "Hello")

	_, err = s.ApplyToPDF(out, 144)
	assert.ErrorIs(t, err, pdfocr.ErrOCRLayerExists)
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, blank(40, 20), nil))
	img, err := DecodeImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Pt(40, 20), img.Bounds().Size())
	assert.True(t, IsImage(buf.Bytes()))

	_, err = DecodeImage(nil)
	assert.ErrorIs(t, err, ErrImageConversion)
	_, err = DecodeImage([]byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrImageConversion)
	assert.False(t, IsImage([]byte("%PDF-1.4")))
}
