package hocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tesseractHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN"
    "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
 <head>
  <title></title>
  <meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>
  <meta name='ocr-system' content='tesseract 5.3.0' />
  <meta name='ocr-capabilities' content='ocr_page ocr_carea ocr_par ocr_line ocrx_word ocrp_wconf'/>
 </head>
 <body>
  <div class='ocr_page' id='page_1' title='image "unknown"; bbox 0 0 400 120; ppageno 0; scan_res 70 70'>
   <div class='ocr_carea' id='block_1_1' title="bbox 10 10 390 110">
    <p class='ocr_par' id='par_1_1' lang='eng' title="bbox 10 10 390 110">
     <span class='ocr_header' id='line_1_1' title="bbox 10 10 200 40; baseline 0 -5; x_size 30; x_descenders 5; x_ascenders 7">
      <span class='ocrx_word' id='word_1_1' title='bbox 10 10 60 40; x_wconf 96'><span class='ocrx_cinfo' title='x_bboxes 10 10 30 40; x_conf 99.2'>1</span><span class='ocrx_cinfo' title='x_bboxes 32 10 60 40; x_conf 98.1'>2</span></span>
     </span>
     <span class='ocr_line' id='line_1_2' title="bbox 10 60 390 110; baseline 0 -6; x_size 30">
      <span class='ocrx_word' id='word_1_2' title='bbox 10 60 150 110; x_wconf 91'>Lenore,</span>
      <span class='ocrx_word' id='word_1_3' title='bbox 160 60 390 110; x_wconf 88'>amour</span>
     </span>
    </p>
   </div>
  </div>
 </body>
</html>
`

func TestParseHOCRTesseractOutput(t *testing.T) {
	doc, err := ParseHOCR([]byte(tesseractHOCR))
	require.NoError(t, err)

	assert.Equal(t, "en", doc.Language)
	assert.Equal(t, "tesseract 5.3.0", doc.Metadata["ocr-system"])
	require.Len(t, doc.Pages, 1)

	page := doc.Pages[0]
	assert.Equal(t, "page_1", page.ID)
	assert.Equal(t, "unknown", page.ImageName)
	assert.Equal(t, NewBoundingBox(0, 0, 400, 120), page.BBox)
	assert.Equal(t, "70 70", page.Metadata["scan_res"])

	require.Len(t, page.Areas, 1)
	require.Len(t, page.Areas[0].Paragraphs, 1)
	para := page.Areas[0].Paragraphs[0]
	assert.Equal(t, "eng", para.Lang)
	require.Len(t, para.Lines, 2)

	header := para.Lines[0]
	assert.Equal(t, ClassHeader, header.Kind)
	assert.Equal(t, ClassHeader, header.Class())
	assert.Equal(t, "0 -5", header.Baseline)
	assert.Equal(t, 30.0, header.Size)
	require.Len(t, header.Words, 1)
	assert.Equal(t, "12", header.Words[0].Text)
	require.Len(t, header.Words[0].Symbols, 2)
	assert.Equal(t, NewBoundingBox(32, 10, 60, 40), header.Words[0].Symbols[1].BBox)
	assert.InDelta(t, 98.1, header.Words[0].Symbols[1].Confidence, 0.001)

	line := para.Lines[1]
	assert.Equal(t, ClassLine, line.Class())
	require.Len(t, line.Words, 2)
	assert.Equal(t, "Lenore,", line.Words[0].Text)
	assert.Equal(t, 91.0, line.Words[0].Confidence)
}

func TestParseHOCRWithoutPages(t *testing.T) {
	_, err := ParseHOCR([]byte(`<html><body><p>nothing here</p></body></html>`))
	assert.ErrorContains(t, err, "no ocr_page")
}

func TestParseHOCRLatin1(t *testing.T) {
	// "très" in ISO-8859-1
	data := []byte("<html><head><meta http-equiv='Content-Type' content='text/html; charset=iso-8859-1'/></head><body>" +
		"<div class='ocr_page' title='bbox 0 0 10 10'><span class='ocr_line' id='l1' title='bbox 0 0 10 10'>" +
		"<span class='ocrx_word' title='bbox 0 0 10 10'>tr\xe8s</span></span></div></body></html>")

	doc, err := ParseHOCR(data)
	require.NoError(t, err)
	words := doc.Pages[0].Words()
	require.Len(t, words, 1)
	assert.Equal(t, "très", words[0].Text)
}

func TestParseTitle(t *testing.T) {
	props := ParseTitle(`image "scan 1.png"; bbox 1 2 3 4; x_wconf 95`)
	assert.Equal(t, []string{"scan 1.png"}, props["image"])
	assert.Equal(t, []string{"1", "2", "3", "4"}, props["bbox"])
	assert.Equal(t, []string{"95"}, props["x_wconf"])

	assert.Nil(t, ParseBoundingBoxFromTitle("x_wconf 95"))
	assert.Nil(t, ParseBoundingBoxFromTitle("bbox 1 2 three 4"))
	assert.Equal(t, &BoundingBox{1, 2, 3, 4}, ParseBoundingBoxFromTitle("bbox 1 2 3 4"))
}
