// Package config handles terrain LOD configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/terrain-lod/internal/lod"
)

// Index formats accepted by TerrainConfig.IndexFormat.
const (
	IndexFormatAuto = "auto"
	IndexFormat16   = "16"
	IndexFormat32   = "32"
)

// Config holds all settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig holds patch geometry settings.
type TerrainConfig struct {
	PatchVertices int    `yaml:"patch_vertices"` // vertices per patch side, 2^k+1
	IndexFormat   string `yaml:"index_format"`   // auto, 16 or 32 bit GPU indices
}

// ViewerConfig holds the LOD viewer window and browsing state.
type ViewerConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	StartLevel int    `yaml:"start_level"`
	StartDiff  string `yaml:"start_diff"` // e.g. "left,up" or "none"
	Wireframe  bool   `yaml:"wireframe"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			PatchVertices: lod.DefaultPatchVertices,
			IndexFormat:   IndexFormatAuto,
		},
		Viewer: ViewerConfig{
			Width:      1024,
			Height:     1024,
			Fullscreen: false,
			VSync:      true,
			StartLevel: 0,
			StartDiff:  "none",
			Wireframe:  true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that the loaders cannot type-check.
func (c *Config) Validate() error {
	if err := lod.ValidatePatchVertices(c.Terrain.PatchVertices); err != nil {
		return fmt.Errorf("terrain.patch_vertices: %w", err)
	}
	switch c.Terrain.IndexFormat {
	case IndexFormatAuto, IndexFormat32:
	case IndexFormat16:
		v := c.Terrain.PatchVertices
		if v*v > 1<<16 {
			return fmt.Errorf("terrain.index_format: %d×%d vertices do not fit 16-bit indices", v, v)
		}
	default:
		return fmt.Errorf("terrain.index_format: unknown format %q", c.Terrain.IndexFormat)
	}

	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("viewer: invalid size %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.StartLevel < 0 || c.Viewer.StartLevel > lod.MaxLevel {
		return fmt.Errorf("viewer.start_level: %w: %d", lod.ErrInvalidLevel, c.Viewer.StartLevel)
	}
	diff, err := lod.ParseDiffSet(c.Viewer.StartDiff)
	if err != nil {
		return fmt.Errorf("viewer.start_diff: %w", err)
	}
	if !diff.Empty() && c.Viewer.StartLevel == 0 {
		return fmt.Errorf("viewer.start_diff: %w: %s needs start_level >= 1", lod.ErrInvalidDiffSet, diff)
	}
	return nil
}

// Use16BitIndices reports whether GPU index buffers should be 16-bit.
func (c *Config) Use16BitIndices() bool {
	switch c.Terrain.IndexFormat {
	case IndexFormat16:
		return true
	case IndexFormat32:
		return false
	}
	v := c.Terrain.PatchVertices
	return v*v <= 1<<16
}
