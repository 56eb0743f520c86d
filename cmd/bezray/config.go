package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/bezray"
)

// sceneConfig is the resolved scene description the renderer runs from.
type sceneConfig struct {
	Model   string
	Render  bezray.RenderOptions
	Eye     bezray.Vec3
	Target  bezray.Vec3
	Up      bezray.Vec3
	FOV     float64
	AutoAim bool
}

// fileConfig is the scene.toml schema. All keys are optional; unset keys
// keep their defaults, and the model may come from the -model flag instead.
type fileConfig struct {
	Model       string     `toml:"model"`
	Width       int        `toml:"width"`
	Height      int        `toml:"height"`
	Supersample int        `toml:"supersample"`
	Workers     int        `toml:"workers"`
	Background  []float64  `toml:"background"`
	Surface     []float64  `toml:"surface"`
	Camera      cameraToml `toml:"camera"`
	Light       lightToml  `toml:"light"`
}

type cameraToml struct {
	Eye    []float64 `toml:"eye"`
	Target []float64 `toml:"target"`
	Up     []float64 `toml:"up"`
	FOV    float64   `toml:"fov"`
}

type lightToml struct {
	Dir       []float64 `toml:"dir"`
	Ambient   float64   `toml:"ambient"`
	Headlight float64   `toml:"headlight"`
}

// defaultSceneConfig positions the camera along the +Y/+Z diagonal looking
// at the origin; AutoAim retargets it at the model bounds unless the file
// pins the camera down.
func defaultSceneConfig() sceneConfig {
	return sceneConfig{
		Render:  bezray.DefaultRenderOptions(),
		Eye:     bezray.V3(0, -6, 4),
		Target:  bezray.V3(0, 0, 0),
		Up:      bezray.V3(0, 0, 1),
		FOV:     40,
		AutoAim: true,
	}
}

// loadSceneConfig reads a scene.toml and overlays it on the defaults.
// Only keys present in the file override; toml.MetaData distinguishes
// "absent" from zero values.
func loadSceneConfig(path string) (sceneConfig, error) {
	cfg := defaultSceneConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return sceneConfig{}, fmt.Errorf("load scene config: %w", err)
	}

	cfg.Model = raw.Model
	if meta.IsDefined("width") {
		cfg.Render.Width = raw.Width
	}
	if meta.IsDefined("height") {
		cfg.Render.Height = raw.Height
	}
	if meta.IsDefined("supersample") {
		cfg.Render.Supersample = raw.Supersample
	}
	if meta.IsDefined("workers") {
		cfg.Render.Workers = raw.Workers
	}
	if meta.IsDefined("background") {
		c, err := tomlRGB(raw.Background)
		if err != nil {
			return sceneConfig{}, fmt.Errorf("load scene config: background: %w", err)
		}
		cfg.Render.Background = c
	}
	if meta.IsDefined("surface") {
		c, err := tomlRGB(raw.Surface)
		if err != nil {
			return sceneConfig{}, fmt.Errorf("load scene config: surface: %w", err)
		}
		cfg.Render.Surface = c
	}
	if meta.IsDefined("camera", "eye") {
		v, err := tomlVec3(raw.Camera.Eye)
		if err != nil {
			return sceneConfig{}, fmt.Errorf("load scene config: camera.eye: %w", err)
		}
		cfg.Eye = v
		cfg.AutoAim = false
	}
	if meta.IsDefined("camera", "target") {
		v, err := tomlVec3(raw.Camera.Target)
		if err != nil {
			return sceneConfig{}, fmt.Errorf("load scene config: camera.target: %w", err)
		}
		cfg.Target = v
		cfg.AutoAim = false
	}
	if meta.IsDefined("camera", "up") {
		v, err := tomlVec3(raw.Camera.Up)
		if err != nil {
			return sceneConfig{}, fmt.Errorf("load scene config: camera.up: %w", err)
		}
		cfg.Up = v
	}
	if meta.IsDefined("camera", "fov") {
		cfg.FOV = raw.Camera.FOV
	}
	if meta.IsDefined("light", "dir") {
		v, err := tomlVec3(raw.Light.Dir)
		if err != nil {
			return sceneConfig{}, fmt.Errorf("load scene config: light.dir: %w", err)
		}
		cfg.Render.LightDir = v
	}
	if meta.IsDefined("light", "ambient") {
		cfg.Render.Ambient = raw.Light.Ambient
	}
	if meta.IsDefined("light", "headlight") {
		cfg.Render.Headlight = raw.Light.Headlight
	}

	return cfg, nil
}

func tomlVec3(v []float64) (bezray.Vec3, error) {
	if len(v) != 3 {
		return bezray.Vec3{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
	return bezray.V3(v[0], v[1], v[2]), nil
}

func tomlRGB(v []float64) (bezray.RGB, error) {
	if len(v) != 3 {
		return bezray.RGB{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
	return bezray.RGB{R: v[0], G: v[1], B: v[2]}, nil
}
