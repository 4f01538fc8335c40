package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging and FPS in the title bar")
	flagDemo    = flag.String("demo", "", "Startup demo scene")
	flagCount   = flag.Int("count", -1, "Number of drawables in the startup demo")
	flagWidth   = flag.Int("width", 0, "Window width")
	flagHeight  = flag.Int("height", 0, "Window height")
	flagMSAA    = flag.Int("msaa", 0, "MSAA sample count (1, 4, 8, 16)")
	flagModel   = flag.String("model", "", "Path to a glTF/GLB model for the model demo")
	flagTexture = flag.String("texture", "", "Path to an image used by the planes demo")
	flagWatch   = flag.Bool("watch", false, "Reload shaders from the shader directory on change")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Window.ShowFPS = true
	}
	if *flagDemo != "" {
		cfg.Scene.Demo = *flagDemo
	}
	if *flagCount >= 0 {
		cfg.Scene.Count = *flagCount
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagMSAA > 0 {
		cfg.Window.MSAA = *flagMSAA
	}
	if *flagModel != "" {
		cfg.Assets.Model = *flagModel
	}
	if *flagTexture != "" {
		cfg.Assets.Texture = *flagTexture
	}
	if *flagWatch {
		cfg.Assets.WatchShaders = true
	}
}
