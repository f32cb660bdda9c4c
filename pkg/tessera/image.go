package tessera

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodable are the content types DecodeImage accepts.
var decodable = []string{
	"image/png", "image/jpeg", "image/gif", "image/tiff", "image/bmp", "image/webp",
}

// EncodeImage converts img to the PNG bytes handed to the engine.
func EncodeImage(img image.Image) ([]byte, error) {
	data, _, err := encodeImage(img)
	return data, err
}

// encodeImage also returns the size it checked. Images that are typed nil
// pointers or lack pixel storage panic in Bounds or in the encoder; those
// panics become conversion errors.
func encodeImage(img image.Image) (data []byte, size image.Point, err error) {
	if img == nil {
		return nil, size, newError(ImageConversionError, "encode image", errors.New("image is nil"))
	}
	defer func() {
		if r := recover(); r != nil {
			data, size = nil, image.Point{}
			err = newError(ImageConversionError, "encode image", fmt.Errorf("image is not constructed: %v", r))
		}
	}()
	size = img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, image.Point{}, newError(ImageConversionError, "encode image", fmt.Errorf("image has no pixels (%dx%d)", size.X, size.Y))
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, image.Point{}, newError(ImageConversionError, "encode image", err)
	}
	return buf.Bytes(), size, nil
}

// DecodeImage decodes PNG, JPEG, GIF, TIFF, BMP or WebP data.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, newError(ImageConversionError, "decode image", errors.New("no image data"))
	}
	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), decodable...) {
		return nil, newError(ImageConversionError, "decode image", fmt.Errorf("unsupported image type %s", mtype.String()))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, newError(ImageConversionError, "decode image", err)
	}
	return img, nil
}

// IsImage reports whether data is in a format DecodeImage accepts.
func IsImage(data []byte) bool {
	return mimetype.EqualsAny(mimetype.Detect(data).String(), decodable...)
}
