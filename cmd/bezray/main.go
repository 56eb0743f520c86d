// Command bezray renders a BPT Bézier surface model to PNG by raytracing
// the patches through their implicit matrix representations.
//
// Usage:
//
//	bezray -scene scene.toml -output out.png
//
// The scene file names the model and describes camera, light, and render
// settings; the flags below override it.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/bezray"
)

func main() {
	var (
		scenePath = flag.String("scene", "scene.toml", "scene description file")
		model     = flag.String("model", "", "BPT model path (overrides the scene file)")
		output    = flag.String("output", "out.png", "output PNG file")
		width     = flag.Int("width", 0, "image width (overrides the scene file)")
		height    = flag.Int("height", 0, "image height (overrides the scene file)")
		workers   = flag.Int("workers", 0, "worker count, 0 = all cores (overrides the scene file)")
		verbose   = flag.Bool("v", false, "info logging to stderr")
		debug     = flag.Bool("vv", false, "debug logging to stderr")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	if *debug {
		level = slog.LevelDebug
	}
	bezray.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadSceneConfig(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *width > 0 {
		cfg.Render.Width = *width
	}
	if *height > 0 {
		cfg.Render.Height = *height
	}
	if *workers > 0 {
		cfg.Render.Workers = *workers
	}
	if cfg.Model == "" {
		log.Fatalf("No model given: set model in %s or pass -model", *scenePath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	patches, err := bezray.LoadBPT(cfg.Model)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}

	scene, err := bezray.BuildScene(ctx, patches, bezray.BuildOptions{Workers: cfg.Render.Workers})
	if err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}

	if cfg.AutoAim {
		cfg.Target, cfg.Eye = aimAtBounds(scene.Bounds(), cfg.Eye)
	}
	aspect := float64(cfg.Render.Width) / float64(cfg.Render.Height)
	camera := bezray.NewCamera(cfg.Eye, cfg.Target, cfg.Up, cfg.FOV, aspect)

	renderer, err := bezray.NewRenderer(scene, camera, cfg.Render)
	if err != nil {
		log.Fatalf("Failed to configure renderer: %v", err)
	}
	if err := renderer.RenderPNG(ctx, *output); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	log.Printf("Rendered %d patches to %s (%dx%d)\n",
		len(patches), *output, cfg.Render.Width, cfg.Render.Height)
}

// aimAtBounds retargets the camera at the center of the model bounds and
// backs the eye off along its current offset far enough to frame the whole
// diagonal.
func aimAtBounds(b bezray.Box, eye bezray.Vec3) (target, newEye bezray.Vec3) {
	target = b.Min.Add(b.Max).Mul(0.5)
	offset := eye.Sub(target)
	dist := offset.Length()
	need := b.Diagonal() * 1.5
	if dist < need {
		if dist == 0 {
			offset = bezray.V3(0, -need, need*0.5)
		} else {
			offset = offset.Mul(need / dist)
		}
	}
	return target, target.Add(offset)
}
