package engine

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// BlankPNG is a small white page. Backends recognize it when a handle opens
// so that language packs Tesseract cannot load fail at open time.
var BlankPNG = sync.OnceValue(func() []byte {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = uint8(color.White.Y >> 8)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
})
