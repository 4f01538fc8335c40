package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.MSAA != 4 {
		t.Errorf("expected msaa 4, got %d", cfg.Window.MSAA)
	}
	if cfg.Camera.Position != [3]float32{5, 5, 20} {
		t.Errorf("unexpected camera position %v", cfg.Camera.Position)
	}
	if cfg.Camera.Near != 0.1 || cfg.Camera.Far != 100 {
		t.Errorf("unexpected clip range %g..%g", cfg.Camera.Near, cfg.Camera.Far)
	}
	if cfg.Scene.Demo != "cubes" {
		t.Errorf("expected cubes demo, got %s", cfg.Scene.Demo)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpulab.yaml")
	content := `
window:
  width: 800
  msaa: 1
scene:
  demo: tori
  count: 12
camera:
  position: [0, 2, 8]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("unset height should keep default 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.MSAA != 1 {
		t.Errorf("expected msaa 1, got %d", cfg.Window.MSAA)
	}
	if cfg.Scene.Demo != "tori" || cfg.Scene.Count != 12 {
		t.Errorf("unexpected scene %+v", cfg.Scene)
	}
	if cfg.Camera.Position != [3]float32{0, 2, 8} {
		t.Errorf("unexpected camera position %v", cfg.Camera.Position)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Scene.Demo = "grids"
	cfg.Assets.Texture = "/tmp/checker.png"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Scene.Demo != "grids" || loaded.Assets.Texture != "/tmp/checker.png" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"bad msaa", func(c *Config) { c.Window.MSAA = 3 }, "msaa"},
		{"bad clip", func(c *Config) { c.Camera.Far = 0.05 }, "clip range"},
		{"unknown demo", func(c *Config) { c.Scene.Demo = "teapots" }, "unknown demo"},
		{"negative count", func(c *Config) { c.Scene.Count = -1 }, "count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestExpandPaths(t *testing.T) {
	cfg := Default()
	cfg.Assets.Model = "~/models/duck.glb"
	cfg.Assets.Texture = "/abs/tex.png"
	if err := cfg.expandPaths(); err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if strings.HasPrefix(cfg.Assets.Model, "~") {
		t.Errorf("model path not expanded: %s", cfg.Assets.Model)
	}
	if cfg.Assets.Texture != "/abs/tex.png" {
		t.Errorf("absolute path changed: %s", cfg.Assets.Texture)
	}
}
