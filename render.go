package bezray

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"sync/atomic"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/bezray/internal/parallel"
)

// RenderOptions controls image generation.
type RenderOptions struct {
	// Width and Height are the output image dimensions in pixels.
	Width, Height int

	// Supersample renders at an N-times larger resolution and downscales
	// with a Catmull-Rom filter. 0 or 1 disables supersampling.
	Supersample int

	// Workers is the size of the render worker pool.
	// Zero or negative means GOMAXPROCS.
	Workers int

	// TileRows is the number of image rows per work item.
	TileRows int

	// Background is the color of rays that miss every patch.
	Background RGB

	// Surface is the base color of all patches.
	Surface RGB

	// LightDir is the direction a single directional light shines in.
	LightDir Vec3

	// Ambient is the light floor so unlit faces stay visible.
	Ambient float64

	// Headlight blends in illumination from the camera direction,
	// which keeps silhouettes readable when the light grazes.
	Headlight float64
}

// DefaultRenderOptions returns sensible defaults for a quick render.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Width:       800,
		Height:      600,
		Supersample: 1,
		TileRows:    8,
		Background:  RGB{R: 0.06, G: 0.07, B: 0.10},
		Surface:     RGB{R: 0.80, G: 0.33, B: 0.20},
		LightDir:    V3(-0.4, -1, -0.6),
		Ambient:     0.12,
		Headlight:   0.25,
	}
}

// Renderer traces a scene through a camera into an image.
type Renderer struct {
	scene  *Scene
	camera Camera
	opts   RenderOptions
}

// NewRenderer creates a renderer. The options are validated once here so
// Render cannot fail on configuration.
func NewRenderer(scene *Scene, camera Camera, opts RenderOptions) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("bezray: invalid dimensions: width=%d, height=%d (both must be > 0)",
			opts.Width, opts.Height)
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.TileRows < 1 {
		opts.TileRows = 8
	}
	return &Renderer{scene: scene, camera: camera, opts: opts}, nil
}

// Render traces every pixel and returns the finished image.
// Rows are traced in tiles on a work-stealing pool; the context cancels
// the render between tiles.
func (r *Renderer) Render(ctx context.Context) (*image.RGBA, error) {
	ss := r.opts.Supersample
	w := r.opts.Width * ss
	h := r.opts.Height * ss

	start := time.Now()
	pm := NewPixmap(w, h)

	pool := parallel.NewPool(r.opts.Workers)
	defer pool.Close()

	var hits atomic.Int64
	work := make([]func(), 0, (h+r.opts.TileRows-1)/r.opts.TileRows)
	for y0 := 0; y0 < h; y0 += r.opts.TileRows {
		y0 := y0
		y1 := min(y0+r.opts.TileRows, h)
		work = append(work, func() {
			if ctx.Err() != nil {
				return
			}
			hits.Add(r.renderRows(pm, y0, y1, w, h))
		})
	}
	pool.ExecuteAll(work)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bezray: render: %w", err)
	}

	img := pm.ToImage()
	if ss > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = dst
	}

	Logger().Info("bezray: frame rendered",
		"width", r.opts.Width, "height", r.opts.Height,
		"supersample", ss, "hits", hits.Load(), "elapsed", time.Since(start))
	return img, nil
}

// RenderPNG renders and writes the image to a PNG file.
func (r *Renderer) RenderPNG(ctx context.Context, path string) error {
	img, err := r.Render(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, img)
}

// renderRows traces the pixel rows [y0, y1) and returns the hit count.
func (r *Renderer) renderRows(pm *Pixmap, y0, y1, w, h int) int64 {
	var hits int64
	for y := y0; y < y1; y++ {
		sy := (float64(y) + 0.5) / float64(h)
		for x := 0; x < w; x++ {
			sx := (float64(x) + 0.5) / float64(w)
			ray := r.camera.Ray(sx, sy)

			hit, ok := r.scene.Raytrace(ray)
			if !ok {
				pm.Set(x, y, r.opts.Background)
				continue
			}
			hits++
			pm.Set(x, y, r.shade(ray, hit))
		}
	}
	return hits
}

// shade computes simple Lambert lighting from the exact surface normal at
// the hit preimage, plus the ambient floor and headlight term.
func (r *Renderer) shade(ray Ray, hit Hit) RGB {
	ip := r.scene.patches[hit.Patch]
	n := ip.Patch.Normal(hit.U, hit.V)
	if n.Dot(ray.Dir) > 0 {
		n = n.Neg()
	}

	diffuse := math.Max(0, n.Dot(r.opts.LightDir.Normalize().Neg()))
	head := math.Max(0, n.Dot(ray.Dir.Neg()))
	k := r.opts.Ambient + (1-r.opts.Ambient)*(diffuse+r.opts.Headlight*head)
	return r.opts.Surface.Scale(k)
}
