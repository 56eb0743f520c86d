package bezray

import (
	"bytes"
	"image/png"
	"testing"
)

func TestPixmapSetAt(t *testing.T) {
	pm := NewPixmap(4, 3)
	if pm.Width() != 4 || pm.Height() != 3 {
		t.Fatalf("dims = %dx%d", pm.Width(), pm.Height())
	}

	c := RGB{R: 0.25, G: 0.5, B: 2} // out-of-gamut values survive storage
	pm.Set(2, 1, c)
	if got := pm.At(2, 1); got != c {
		t.Errorf("At = %+v, want %+v", got, c)
	}
	if got := pm.At(0, 0); got != (RGB{}) {
		t.Errorf("unset pixel = %+v, want zero", got)
	}

	// Out-of-range access must be harmless.
	pm.Set(-1, 0, c)
	pm.Set(0, 99, c)
	if got := pm.At(-1, 0); got != (RGB{}) {
		t.Errorf("out-of-range At = %+v, want zero", got)
	}
}

func TestPixmapClear(t *testing.T) {
	pm := NewPixmap(3, 3)
	pm.Clear(RGB{R: 0.1, G: 0.2, B: 0.3})
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got := pm.At(x, y); got != (RGB{R: 0.1, G: 0.2, B: 0.3}) {
				t.Fatalf("pixel (%d,%d) = %+v after Clear", x, y, got)
			}
		}
	}
}

func TestPixmapToImageQuantization(t *testing.T) {
	pm := NewPixmap(2, 1)
	pm.Set(0, 0, RGB{R: 0, G: 0.5, B: 1})
	pm.Set(1, 0, RGB{R: -1, G: 2, B: 0.25})

	img := pm.ToImage()
	r, g, b, a := img.At(0, 0).RGBA()
	if r>>8 != 0 || g>>8 != 128 || b>>8 != 255 || a>>8 != 255 {
		t.Errorf("pixel 0 = (%d, %d, %d, %d)", r>>8, g>>8, b>>8, a>>8)
	}
	r, g, b, _ = img.At(1, 0).RGBA()
	if r>>8 != 0 || g>>8 != 255 {
		t.Errorf("clamping failed: r=%d g=%d", r>>8, g>>8)
	}
	if b>>8 != 64 {
		t.Errorf("b = %d, want 64", b>>8)
	}
}

func TestPixmapEncodePNG(t *testing.T) {
	pm := NewPixmap(5, 7)
	pm.Clear(RGB{R: 1, G: 0, B: 0})

	var buf bytes.Buffer
	if err := pm.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 5 || cfg.Height != 7 {
		t.Errorf("decoded dims = %dx%d, want 5x7", cfg.Width, cfg.Height)
	}
}

func TestRGBHelpers(t *testing.T) {
	c := RGB{R: 0.1, G: 0.2, B: 0.3}.Add(RGB{R: 0.4, G: 0.5, B: 0.6})
	if !almostEqual(c.R, 0.5, 1e-15) || !almostEqual(c.G, 0.7, 1e-15) || !almostEqual(c.B, 0.9, 1e-15) {
		t.Errorf("Add = %+v", c)
	}
	c = RGB{R: 1, G: 2, B: 3}.Scale(0.5)
	if !almostEqual(c.R, 0.5, 1e-15) || !almostEqual(c.G, 1, 1e-15) || !almostEqual(c.B, 1.5, 1e-15) {
		t.Errorf("Scale = %+v", c)
	}
}
