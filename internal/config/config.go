// Package config handles playground configuration loading and management.
package config

import (
	"fmt"
	"slices"
)

// Demos lists the scene names the playground knows how to build.
var Demos = []string{"cubes", "spheres", "tori", "grids", "planes", "model", "instanced"}

// Config holds all playground settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Scene   SceneConfig   `yaml:"scene"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display and surface settings.
type WindowConfig struct {
	Title                string `yaml:"title"`
	Width                int    `yaml:"width"`
	Height               int    `yaml:"height"`
	VSync                bool   `yaml:"vsync"`
	MSAA                 int    `yaml:"msaa"`
	FPSLimit             int    `yaml:"fps_limit"`
	ForceFallbackAdapter bool   `yaml:"force_fallback_adapter"`
	ShowFPS              bool   `yaml:"show_fps"`
}

// CameraConfig holds the initial camera placement.
type CameraConfig struct {
	Position   [3]float32 `yaml:"position"`
	Target     [3]float32 `yaml:"target"`
	FOVDegrees float32    `yaml:"fov_degrees"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	// Step is the slider increment used by the control panel camera axes.
	Step float32 `yaml:"step"`
}

// SceneConfig selects the startup demo and its population.
type SceneConfig struct {
	Demo   string  `yaml:"demo"`
	Count  int     `yaml:"count"`
	Seed   int64   `yaml:"seed"`
	Spread float32 `yaml:"spread"`
}

// AssetsConfig holds asset file paths. Paths may start with "~".
type AssetsConfig struct {
	ShaderDir    string `yaml:"shader_dir"`
	WatchShaders bool   `yaml:"watch_shaders"`
	Model        string `yaml:"model"`
	Texture      string `yaml:"texture"`
	MaxTexture   int    `yaml:"max_texture"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "gpulab",
			Width:  1280,
			Height: 720,
			VSync:  true,
			MSAA:   4,
		},
		Camera: CameraConfig{
			Position:   [3]float32{5, 5, 20},
			FOVDegrees: 45,
			Near:       0.1,
			Far:        100,
			Step:       0.1,
		},
		Scene: SceneConfig{
			Demo:   "cubes",
			Count:  1000,
			Seed:   1,
			Spread: 20,
		},
		Assets: AssetsConfig{
			MaxTexture: 2048,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used to start the playground.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Window.MSAA {
	case 1, 4, 8, 16:
	default:
		return fmt.Errorf("unsupported msaa sample count %d", c.Window.MSAA)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("invalid camera clip range [%g, %g]", c.Camera.Near, c.Camera.Far)
	}
	if !slices.Contains(Demos, c.Scene.Demo) {
		return fmt.Errorf("unknown demo %q", c.Scene.Demo)
	}
	if c.Scene.Count < 0 {
		return fmt.Errorf("scene count must not be negative, got %d", c.Scene.Count)
	}
	return nil
}
