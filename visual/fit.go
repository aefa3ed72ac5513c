package visual

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"

	"nbreport/textflow"
)

// Placement is where and how large image is drawn.
type Placement struct {
	X, Y, W, H float64
}

// Fit scales intrinsic size w x h by min(box.W/w, box.H/h) and centers the
// result in the box. Reports false for degenerate sizes.
func Fit(w, h int, box textflow.Box) (Placement, bool) {
	if w <= 0 || h <= 0 || box.W <= 0 || box.H <= 0 {
		return Placement{}, false
	}
	scale := min(box.W/float64(w), box.H/float64(h))
	dw, dh := float64(w)*scale, float64(h)*scale
	return Placement{
		X: box.X + (box.W-dw)/2,
		Y: box.Y + (box.H-dh)/2,
		W: dw,
		H: dh,
	}, true
}

// FitBytes decodes image header to learn intrinsic size and fits it.
func FitBytes(data []byte, box textflow.Box) (Placement, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Placement{}, fmt.Errorf("unable to decode image: %w", err)
	}
	p, ok := Fit(cfg.Width, cfg.Height, box)
	if !ok {
		return Placement{}, fmt.Errorf("invalid image size %dx%d", cfg.Width, cfg.Height)
	}
	return p, nil
}
