package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gotk3/gotk3/gtk"

	"github.com/stewi1014/glmandel/config"
	"github.com/stewi1014/glmandel/engine"
	"github.com/stewi1014/glmandel/gpu/glgpu"
	"github.com/stewi1014/glmandel/render"
	"github.com/stewi1014/glmandel/shader"
	"github.com/stewi1014/glmandel/viewport"
)

// Application ties the render window, the engine and the tools window together.
// Everything runs on the main thread.
type Application struct {
	log *slog.Logger
	cfg *config.Config

	window *RenderWindow
	device *glgpu.Device
	engine *engine.Engine
	tools  *ConfigurationWindow
}

func run(ctx context.Context, log *slog.Logger, cfg *config.Config, flags Flags) error {
	kernel := shader.DefaultKernel
	if cfg.Kernel != "" {
		var err error
		if kernel, err = shader.LoadKernel(cfg.Kernel); err != nil {
			return err
		}
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init failed: %w", err)
	}
	defer glfw.Terminate()

	window, err := NewRenderWindow(cfg.Width, cfg.Height, flags.Screenshot == "", flags.Debug)
	if err != nil {
		return err
	}
	defer window.Destroy()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	device, err := glgpu.New(log, flags.Debug)
	if err != nil {
		return err
	}
	defer device.Delete()

	width, height := window.GetFramebufferSize()
	device.SetSurfaceSize(width, height)

	eng, err := engine.New(device, kernel, cfg.ColorFunctionValue(),
		engine.WithLogger(log),
		engine.WithMode(cfg.ModeValue()),
		engine.WithMaxIters(cfg.MaxIters),
		engine.WithResolutionScale(cfg.ResolutionScale),
		engine.WithSize(width, height),
	)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := errors.Join(eng.SetCenter(cfg.CenterVec()), eng.SetRadius(cfg.Radius)); err != nil {
		return err
	}

	if flags.Screenshot != "" {
		return eng.Screenshot(flags.Screenshot, cfg.Screenshot.Scale, cfg.Screenshot.MaxIters)
	}

	a := &Application{
		log:    log,
		cfg:    cfg,
		window: window,
		device: device,
		engine: eng,
	}
	window.Attach(a)

	if !flags.NoTools {
		gtk.Init(nil)
		a.tools, err = NewConfigurationWindow(a)
		if err != nil {
			return err
		}
		defer a.tools.Destroy()
	}

	return a.loop(ctx)
}

func (a *Application) loop(ctx context.Context) error {
	for !a.window.ShouldClose() && ctx.Err() == nil {
		glfw.PollEvents()
		if a.tools != nil {
			for gtk.EventsPending() {
				gtk.MainIteration()
			}
		}

		if err := a.engine.Frame(); err != nil {
			return err
		}
		a.window.SwapBuffers()
	}
	return nil
}

// report shows a recoverable error. The engine keeps its last valid state.
func (a *Application) report(err error) {
	if err == nil {
		return
	}

	var rangeErr *viewport.InvalidRangeError
	if errors.As(err, &rangeErr) {
		a.log.Warn("rejected", "err", err)
		return
	}

	a.log.Error("operation failed", "err", err)
	if a.tools != nil {
		NewErrorDialog(a.tools.Window, err)
	}
}

func (a *Application) resize(width, height int) {
	if width == 0 || height == 0 {
		// Minimised.
		return
	}
	a.device.SetSurfaceSize(width, height)
	a.report(a.engine.SetSize(width, height))
}

func (a *Application) jumpTo(b config.Bookmark) {
	a.log.Info("bookmark", "name", b.Name, "x", b.Center[0], "y", b.Center[1], "radius", b.Radius)
	a.report(errors.Join(
		a.engine.SetCenter(b.CenterVec()),
		a.engine.SetRadius(b.Radius),
	))
}

func (a *Application) logView() {
	c := a.engine.Center()
	a.log.Info("view",
		"x", c[0],
		"y", c[1],
		"radius", a.engine.Radius(),
		"maxIters", a.engine.MaxIters(),
		"colorFunction", a.engine.ColorFunction().Name,
	)
}

func (a *Application) setMaxIters(n int) {
	if err := a.engine.SetMaxIters(n); err != nil {
		a.report(err)
		return
	}
	a.log.Info("max iterations", "n", n)
	if a.tools != nil {
		a.tools.sync()
	}
}

func (a *Application) setMode(m render.Mode) {
	a.engine.SetMode(m)
	a.log.Info("render mode", "mode", m)
	if a.tools != nil {
		a.tools.sync()
	}
}
