package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagPatchVertices = flag.Int("patch-vertices", 0, "Vertices per patch side (2^k+1)")
	flagIndexFormat   = flag.String("index-format", "", "GPU index format: auto, 16 or 32")
	flagWindowed      = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen    = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth         = flag.Int("width", 0, "Window width")
	flagHeight        = flag.Int("height", 0, "Window height")
	flagLevel         = flag.Int("level", -1, "Initial LOD level")
	flagDiff          = flag.String("diff", "", "Initial diffset, e.g. left,up")
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
	}
	if *flagPatchVertices > 0 {
		cfg.Terrain.PatchVertices = *flagPatchVertices
	}
	if *flagIndexFormat != "" {
		cfg.Terrain.IndexFormat = *flagIndexFormat
	}
	if *flagWindowed {
		cfg.Viewer.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
	if *flagLevel >= 0 {
		cfg.Viewer.StartLevel = *flagLevel
	}
	if *flagDiff != "" {
		cfg.Viewer.StartDiff = *flagDiff
	}
}
