package main

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/stewi1014/glmandel/render"
	"github.com/stewi1014/glmandel/viewport"
)

func NewRenderWindow(width, height int, visible, debug bool) (*RenderWindow, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}
	if !visible {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	window, err := glfw.CreateWindow(
		width,
		height,
		"glmandel",
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}

	w := &RenderWindow{
		Window: window,
	}

	w.MakeContextCurrent()
	return w, nil
}

type RenderWindow struct {
	*glfw.Window
	app *Application
}

// Attach routes window input to app.
func (w *RenderWindow) Attach(app *Application) {
	w.app = app
	w.SetFramebufferSizeCallback(w.framebufferSize)
	w.SetCursorPosCallback(w.cursorPos)
	w.SetMouseButtonCallback(w.mouseButton)
	w.SetScrollCallback(w.scroll)
	w.SetKeyCallback(w.key)
}

// toFramebuffer converts window coordinates to framebuffer pixels, which
// differ on high DPI displays.
func (w *RenderWindow) toFramebuffer(x, y float64) mgl64.Vec2 {
	ww, wh := w.GetSize()
	fw, fh := w.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return mgl64.Vec2{x, y}
	}
	return mgl64.Vec2{
		x * float64(fw) / float64(ww),
		y * float64(fh) / float64(wh),
	}
}

func (w *RenderWindow) cursor() mgl64.Vec2 {
	return w.toFramebuffer(w.GetCursorPos())
}

func (w *RenderWindow) framebufferSize(_ *glfw.Window, width, height int) {
	w.app.resize(width, height)
}

func (w *RenderWindow) cursorPos(_ *glfw.Window, x, y float64) {
	w.app.report(w.app.engine.HandleEvent(viewport.PointerMove{Pos: w.toFramebuffer(x, y)}))
}

func (w *RenderWindow) mouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	var b viewport.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = viewport.ButtonPrimary
	case glfw.MouseButtonRight:
		b = viewport.ButtonSecondary
	case glfw.MouseButtonMiddle:
		b = viewport.ButtonMiddle
	default:
		return
	}

	var ev viewport.Event
	switch action {
	case glfw.Press:
		ev = viewport.ButtonPress{Button: b, Pos: w.cursor()}
	case glfw.Release:
		ev = viewport.ButtonRelease{Button: b, Pos: w.cursor()}
	default:
		return
	}
	w.app.report(w.app.engine.HandleEvent(ev))
}

func (w *RenderWindow) scroll(_ *glfw.Window, _, yoff float64) {
	w.app.report(w.app.engine.HandleEvent(viewport.Scroll{Pos: w.cursor(), Notches: yoff}))
}

func (w *RenderWindow) key(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	e := w.app.engine

	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)

	case glfw.KeySpace:
		w.app.logView()

	case glfw.KeyC:
		w.app.report(e.SetCenter(mgl64.Vec2{}))

	case glfw.KeyKPAdd, glfw.KeyEqual:
		w.app.setMaxIters(e.MaxIters() * 2)

	case glfw.KeyKPSubtract, glfw.KeyMinus:
		w.app.setMaxIters(max(1, e.MaxIters()/2))

	case glfw.KeyS:
		if action == glfw.Press {
			w.app.saveScreenshot()
		}

	case glfw.KeyM:
		if action != glfw.Press {
			return
		}
		mode := render.Supersampled
		if e.Mode() == render.Supersampled {
			mode = render.Progressive
		}
		w.app.setMode(mode)

	case glfw.Key1, glfw.Key2, glfw.Key3, glfw.Key4, glfw.Key5, glfw.Key6, glfw.Key7, glfw.Key8, glfw.Key9:
		i := int(key - glfw.Key1)
		if i < len(w.app.cfg.Bookmarks) {
			w.app.jumpTo(w.app.cfg.Bookmarks[i])
		}
	}
}
