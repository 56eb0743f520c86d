package bezray

import (
	"image"
	"image/png"
	"io"
	"os"
)

// RGB is a linear-light color with unclamped float components.
type RGB struct {
	R, G, B float64
}

// Add returns the componentwise sum of two colors.
func (c RGB) Add(d RGB) RGB {
	return RGB{R: c.R + d.R, G: c.G + d.G, B: c.B + d.B}
}

// Scale returns the color with every component multiplied by s.
func (c RGB) Scale(s float64) RGB {
	return RGB{R: c.R * s, G: c.G * s, B: c.B * s}
}

// Pixmap is a rectangular framebuffer of linear float RGB values.
// Shading accumulates in float precision; quantization and clamping happen
// only on export.
type Pixmap struct {
	width  int
	height int
	pix    []float64 // 3 floats per pixel, row-major
}

// NewPixmap creates a pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		pix:    make([]float64, width*height*3),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Set stores the color of a single pixel. Out-of-range coordinates are
// ignored.
func (p *Pixmap) Set(x, y int, c RGB) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 3
	p.pix[i+0] = c.R
	p.pix[i+1] = c.G
	p.pix[i+2] = c.B
}

// At returns the color of a single pixel. Out-of-range coordinates return
// the zero color.
func (p *Pixmap) At(x, y int) RGB {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return RGB{}
	}
	i := (y*p.width + x) * 3
	return RGB{R: p.pix[i+0], G: p.pix[i+1], B: p.pix[i+2]}
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c RGB) {
	for i := 0; i < len(p.pix); i += 3 {
		p.pix[i+0] = c.R
		p.pix[i+1] = c.G
		p.pix[i+2] = c.B
	}
}

// ToImage quantizes the pixmap to an 8-bit image.RGBA, clamping every
// component to [0, 1]. Alpha is fully opaque.
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i, j := 0, 0; i < len(p.pix); i, j = i+3, j+4 {
		img.Pix[j+0] = quantize(p.pix[i+0])
		img.Pix[j+1] = quantize(p.pix[i+1])
		img.Pix[j+2] = quantize(p.pix[i+2])
		img.Pix[j+3] = 0xff
	}
	return img
}

// quantize clamps a linear float component to an 8-bit channel value.
func quantize(v float64) uint8 {
	v = v*255 + 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// EncodePNG writes the pixmap as PNG.
func (p *Pixmap) EncodePNG(w io.Writer) error {
	return png.Encode(w, p.ToImage())
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return p.EncodePNG(f)
}
