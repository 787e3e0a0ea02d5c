// Package main is the entry point for the terrain LOD viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/terrain-lod/internal/config"
	"github.com/Faultbox/terrain-lod/internal/logger"
	"github.com/Faultbox/terrain-lod/internal/viewer"
)

// app is the part of the viewer main drives.
type app interface {
	Run() error
	Close()
}

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	code := run(cfg, openViewer)
	logger.Sync()
	os.Exit(code)
}

func openViewer(cfg *config.Config) (app, error) {
	v, err := viewer.New(cfg)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// run opens the viewer and drives it until the window closes. The viewer is
// closed before run returns the exit code.
func run(cfg *config.Config, open func(*config.Config) (app, error)) int {
	logger.Info("=== Terrain LOD Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := open(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		return 1
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return 1
	}

	logger.Info("viewer closed normally")
	return 0
}
