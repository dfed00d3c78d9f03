package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/printforge/meshview/internal/config"
	"github.com/printforge/meshview/internal/logger"
	"github.com/printforge/meshview/internal/render"
	"github.com/printforge/meshview/internal/viewer"
	"github.com/printforge/meshview/internal/window"
)

// panel is the container the main viewport's viewer is bound to.
type panel struct {
	name string
}

func (p *panel) ID() string { return p.name }

// capturingFactory wraps the render factory so the app keeps the
// concrete context for drawing and camera input. The manager only sees
// the interface.
type capturingFactory struct {
	inner *render.Factory
	last  *render.Context
}

func (f *capturingFactory) New(c viewer.Container) (viewer.RenderContext, error) {
	rc, err := f.inner.New(c)
	if err != nil {
		return nil, err
	}
	f.last = rc.(*render.Context)
	return rc, nil
}

// App is the meshview desktop application: one window, one viewer
// panel, keyboard and mouse control. All GL work stays on the main
// thread, so manager calls here are synchronous.
type App struct {
	cfg     *config.Config
	win     *window.Window
	manager *viewer.Manager

	viewerID    string
	panelCtx    *render.Context
	wireframe   bool
	orientation viewer.Orientation

	dragging bool
}

// NewApp creates the window, GL context and the viewer panel.
func NewApp(cfg *config.Config) (*App, error) {
	win, err := window.New(window.Config{
		Title:  "meshview",
		Width:  cfg.Viewer.Width,
		Height: cfg.Viewer.Height,
		VSync:  cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}

	if err := gl.Init(); err != nil {
		win.Close()
		return nil, fmt.Errorf("OpenGL init: %w", err)
	}
	logger.Log.Info("OpenGL initialized", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	factory := &capturingFactory{
		inner: render.NewFactory(int32(cfg.Viewer.Width), int32(cfg.Viewer.Height)),
	}
	manager := viewer.NewManager(factory, viewer.WithLogger(logger.Log))

	id, err := manager.Create(&panel{name: "main"})
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("viewer: %w", err)
	}

	app := &App{
		cfg:         cfg,
		win:         win,
		manager:     manager,
		viewerID:    id,
		panelCtx:    factory.last,
		orientation: viewer.ParseOrientation(cfg.Viewer.Orientation),
	}

	if cfg.Viewer.Wireframe {
		app.wireframe = true
		manager.ToggleWireframe(id, true)
	}
	if app.orientation != viewer.Flat {
		manager.ChangeOrientation(id, app.orientation)
	}

	// A model path on the command line is opened immediately
	if path := flag.Arg(0); path != "" {
		app.loadModel(path)
	}

	return app, nil
}

// Run drives the SDL event loop until quit.
func (a *App) Run() error {
	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if ev.Type == sdl.KEYDOWN {
					running = a.handleKey(ev.Keysym.Sym)
				}
			case *sdl.MouseButtonEvent:
				if ev.Button == sdl.BUTTON_LEFT {
					a.dragging = ev.Type == sdl.MOUSEBUTTONDOWN
				}
			case *sdl.MouseMotionEvent:
				if a.dragging {
					a.panelCtx.HandleMouseDrag(float32(ev.XRel), float32(ev.YRel))
				}
			case *sdl.MouseWheelEvent:
				a.panelCtx.HandleMouseWheel(float32(ev.Y) * 5)
			}
		}

		a.panelCtx.Draw()
		w, h := a.win.GetSize()
		a.panelCtx.BlitTo(int32(w), int32(h))
		a.win.SwapBuffers()

		if !a.cfg.Viewer.VSync {
			sdl.Delay(16)
		}
	}
	return nil
}

// handleKey processes a key press. Returns false to quit.
func (a *App) handleKey(key sdl.Keycode) bool {
	switch key {
	case sdl.K_ESCAPE, sdl.K_q:
		return false
	case sdl.K_o:
		a.openModelDialog()
	case sdl.K_w:
		a.wireframe = !a.wireframe
		a.manager.ToggleWireframe(a.viewerID, a.wireframe)
	case sdl.K_f:
		if a.orientation == viewer.Flat {
			a.orientation = viewer.Vertical
		} else {
			a.orientation = viewer.Flat
		}
		a.manager.ChangeOrientation(a.viewerID, a.orientation)
	case sdl.K_r:
		a.panelCtx.ResetCamera()
	}
	return true
}

func (a *App) openModelDialog() {
	picker := dialog.File().Title("Open model").Filter("STL models", "stl")
	if len(a.cfg.Library.ModelPaths) > 0 {
		picker = picker.SetStartDir(a.cfg.Library.ModelPaths[0])
	}

	path, err := picker.Load()
	if err != nil {
		if !errors.Is(err, dialog.ErrCancelled) {
			logger.Log.Warn("file dialog failed", zap.Error(err))
		}
		return
	}
	a.loadModel(path)
}

func (a *App) loadModel(path string) {
	if err := a.manager.Load(context.Background(), a.viewerID, viewer.FromFile(path)); err != nil {
		logger.Log.Error("model load failed", zap.String("path", path), zap.Error(err))
		return
	}
	a.win.SetTitle("meshview - " + path)
}

// Close disposes the viewer and tears the window down.
func (a *App) Close() {
	a.manager.Dispose(a.viewerID)
	a.win.Close()
}
