package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func TestRasterizeSVG(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50"/></svg>`)

	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"intrinsic", 0, 0, 100, 50},
		{"scale_by_width", 200, 0, 200, 100},
		{"scale_by_height", 0, 200, 400, 200},
		{"fit_box", 150, 150, 150, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := RasterizeSVG(svg, tt.w, tt.h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Fatalf("unexpected bounds: %v", img.Bounds())
			}
		})
	}
}

func TestRasterizeSVG_ClampsHugeViewBox(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100000 50000"><rect width="10" height="10"/></svg>`)
	img, err := RasterizeSVG(svg, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != maxRasterDim || img.Bounds().Dy() != maxRasterDim/2 {
		t.Fatalf("unexpected bounds: %v", img.Bounds())
	}
}

func TestRasterizeSVG_Garbage(t *testing.T) {
	if _, err := RasterizeSVG([]byte("definitely not svg"), 0, 0); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestPlaceholder(t *testing.T) {
	data := Placeholder(100, 50, PlaceholderColor)
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil || format != "png" {
		t.Fatalf("placeholder is not PNG: %v %s", err, format)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Fatalf("unexpected bounds: %v", img.Bounds())
	}
	r, g, b, _ := img.At(10, 10).RGBA()
	if r>>8 != 11 || g>>8 != 191 || b>>8 != 255 {
		t.Errorf("unexpected color %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestNormalize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))
	for x := range 300 {
		src.Set(x, 50, color.Black)
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, src, nil); err != nil {
		t.Fatal(err)
	}

	data, w, h, err := Normalize(buf.Bytes(), 150)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if w != 150 || h != 50 {
		t.Errorf("Normalize() size = %dx%d, want 150x50", w, h)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil || format != "png" {
		t.Errorf("Normalize() produced %s, %v", format, err)
	}

	if _, _, _, err := Normalize([]byte("nope"), 0); err == nil {
		t.Error("Normalize() should fail on garbage")
	}
}
