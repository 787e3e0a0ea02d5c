// Package viewer implements the interactive LOD buffer viewer loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/terrain-lod/internal/config"
	"github.com/Faultbox/terrain-lod/internal/engine/camera"
	"github.com/Faultbox/terrain-lod/internal/engine/debug"
	"github.com/Faultbox/terrain-lod/internal/engine/input"
	"github.com/Faultbox/terrain-lod/internal/engine/renderer"
	"github.com/Faultbox/terrain-lod/internal/engine/window"
	"github.com/Faultbox/terrain-lod/internal/lod"
	"github.com/Faultbox/terrain-lod/internal/logger"
)

const (
	title     = "Terrain LOD"
	patchSize = 1
)

// Viewer shows one patch at a time and steps through the index table.
type Viewer struct {
	cfg       *config.Config
	log       *zap.Logger
	running   bool
	wireframe bool
	capture   bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.PanZoomCamera
	uploader *renderer.IndexUploader
	table    *lod.Table
	browser  *debug.Browser
	shots    *debug.ScreenshotCapture

	shown *lod.IndexBuffer
}

// New opens the window and uploads the whole index table.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:       cfg,
		log:       logger.Named("viewer"),
		wireframe: cfg.Viewer.Wireframe,
		input:     input.New(),
		camera:    camera.NewPanZoomCamera(patchSize),
		shots:     debug.NewScreenshotCapture("screenshots", "lod"),
	}

	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
		zap.Int("patch_vertices", cfg.Terrain.PatchVertices),
	)

	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer after window, since the GL context must exist
	width, height := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:         width,
		Height:        height,
		PatchVertices: cfg.Terrain.PatchVertices,
		PatchSize:     patchSize,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.uploader = renderer.NewIndexUploader(cfg.Use16BitIndices())
	v.table, err = lod.BuildIndexTable(cfg.Terrain.PatchVertices,
		lod.WithUploader(v.uploader),
		lod.WithLogger(logger.Named("lod")),
	)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to build index table: %w", err)
	}

	v.browser = debug.NewBrowser(v.table)
	start, err := lod.ParseDiffSet(cfg.Viewer.StartDiff)
	if err == nil {
		err = v.browser.SetState(cfg.Viewer.StartLevel, start)
	}
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("invalid start state: %w", err)
	}

	v.log.Info("viewer initialized", zap.String("selection", v.browser.Label()))
	return v, nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if v.capture {
			v.screenshot()
			v.capture = false
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := v.window.GetSize()
			v.renderer.Resize(w, h)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_W:
				v.wireframe = !v.wireframe
			case sdl.SCANCODE_F12:
				v.capture = true
			case sdl.SCANCODE_LEFT:
				v.camera.Pan(-1, 0, patchSize)
			case sdl.SCANCODE_RIGHT:
				v.camera.Pan(1, 0, patchSize)
			case sdl.SCANCODE_UP:
				v.camera.Pan(0, 1, patchSize)
			case sdl.SCANCODE_DOWN:
				v.camera.Pan(0, -1, patchSize)
			case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
				v.camera.ZoomBy(1)
			case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
				v.camera.ZoomBy(-1)
			case sdl.SCANCODE_R:
				v.camera.Reset(patchSize)
			}
		}
	}

	for _, cmd := range v.input.Commands() {
		if v.browser.Apply(cmd) {
			v.log.Info("selection changed",
				zap.Stringer("command", cmd),
				zap.String("selection", v.browser.Label()),
			)
		}
	}
}

func (v *Viewer) render() error {
	buf := v.browser.Current()
	if buf != v.shown {
		v.renderer.SetWireframe(debug.WireframeLines(buf, v.table.PatchVertices(), patchSize))
		v.window.SetTitle(title + " " + v.browser.Label())
		v.shown = buf
	}

	v.renderer.SetView(v.camera.ViewMatrix(patchSize))
	v.renderer.Begin()
	v.renderer.DrawPatch(buf, v.uploader.IndexType())
	if v.wireframe {
		v.renderer.DrawWireframe()
	}
	v.renderer.End()
	return nil
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.Capture(pixels, w, h, v.browser.Level(), v.browser.Diff())
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases GPU buffers and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.table != nil {
		v.table.Release()
		v.table = nil
	}
	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
}
