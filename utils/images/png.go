package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PlaceholderColor is used for substitutes of images which could not be
// rendered.
var PlaceholderColor = color.NRGBA{R: 11, G: 191, B: 255, A: 255}

// Placeholder returns solid color PNG of requested size.
func Placeholder(w, h int, c color.Color) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	data, err := EncodePNG(img)
	if err != nil {
		// encoding in-memory NRGBA cannot fail
		panic(err)
	}
	return data
}

// EncodePNG writes 8 bits per channel non interlaced PNG, the only flavor
// every consumer we feed understands.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, imaging.Clone(img), imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		return nil, fmt.Errorf("unable to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize decodes any supported raster format and re-encodes it as PNG,
// downscaling if either side exceeds limit (limit <= 0 disables it).
// Returns PNG data together with resulting dimensions.
func Normalize(data []byte, limit int) ([]byte, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("unable to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, 0, 0, fmt.Errorf("invalid image size %dx%d", b.Dx(), b.Dy())
	}
	if limit > 0 && (b.Dx() > limit || b.Dy() > limit) {
		img = imaging.Fit(img, limit, limit, imaging.Lanczos)
		b = img.Bounds()
	}
	out, err := EncodePNG(img)
	if err != nil {
		return nil, 0, 0, err
	}
	return out, b.Dx(), b.Dy(), nil
}
