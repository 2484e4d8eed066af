// Package engine drives one interactive fractal view: it owns the view state,
// the shader program built from the active color function and the render pipeline.
//
// An Engine is not safe for concurrent use. Input handling, mutation and
// rendering must all happen on the goroutine owning the graphics context.
package engine

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/glmandel/gpu"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/render"
	"github.com/stewi1014/glmandel/shader"
	"github.com/stewi1014/glmandel/viewport"
)

var ErrNoColorFunction = errors.New("no color function")

type Engine struct {
	log    *slog.Logger
	device gpu.Device
	kernel string

	view     *viewport.View
	nav      *viewport.Navigator
	pipeline *render.Pipeline

	program   *shader.Program
	colorFunc *programs.ColorFunction

	// values holds what each color function's uniforms were last set to.
	values map[*programs.ColorFunction]map[string]float32
}

// New creates an engine drawing with device. kernel is the iteration kernel
// source, see shader.DefaultKernel and shader.LoadKernel.
func New(device gpu.Device, kernel string, cf *programs.ColorFunction, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := shader.CheckKernel(kernel); err != nil {
		return nil, &shader.ResourceLoadError{Path: "kernel", Err: err}
	}
	if err := checkScale(o.scale); err != nil {
		return nil, err
	}
	if err := checkMaxIters(o.maxIters); err != nil {
		return nil, err
	}

	e := &Engine{
		log:    o.log,
		device: device,
		kernel: kernel,
		view:   viewport.New(),
		values: make(map[*programs.ColorFunction]map[string]float32),
	}
	if o.width != 0 || o.height != 0 {
		if err := e.view.SetSize(o.width, o.height); err != nil {
			return nil, err
		}
	}

	e.nav = viewport.NewNavigator(e.view)
	e.pipeline = render.NewPipeline(device, e.view, e.log)
	e.pipeline.SetMode(o.mode)
	e.pipeline.SetMaxIters(o.maxIters)

	if err := e.pipeline.Resize(o.scale); err != nil {
		return nil, err
	}
	if err := e.SetColorFunction(cf); err != nil {
		e.pipeline.Close()
		return nil, err
	}

	e.log.Debug("engine created", "colorFunction", cf.Name, "mode", o.mode, "maxIters", o.maxIters, "scale", o.scale)
	return e, nil
}

// Close releases the program and render target.
func (e *Engine) Close() {
	if e.program != nil {
		e.program.Delete()
		e.program = nil
	}
	e.pipeline.Close()
}

// Frame renders and presents one display frame.
func (e *Engine) Frame() error {
	return e.pipeline.Frame()
}

// FrameIndex is the number of samples accumulated since the last change.
func (e *Engine) FrameIndex() uint32 {
	return e.pipeline.FrameState().Index
}

func (e *Engine) Mode() render.Mode {
	return e.pipeline.Mode()
}

func (e *Engine) SetMode(m render.Mode) {
	e.pipeline.SetMode(m)
}

// HandleEvent feeds one input event to the navigator.
func (e *Engine) HandleEvent(ev viewport.Event) error {
	width, height := e.view.Size()

	effect, err := e.nav.Handle(ev)
	if err != nil {
		return err
	}

	if effect.Has(viewport.EffectResize) {
		if err := e.pipeline.Resize(e.pipeline.Scale()); err != nil {
			_ = e.view.SetSize(width, height)
			return err
		}
	}
	if effect != 0 {
		e.pipeline.Invalidate()
	}
	return nil
}

func (e *Engine) Center() mgl64.Vec2 { return e.view.Center() }
func (e *Engine) Radius() float64    { return e.view.Radius() }

func (e *Engine) Range() (xRange, yRange mgl64.Vec2) {
	return e.view.Range()
}

func (e *Engine) SetCenter(center mgl64.Vec2) error {
	if err := e.view.SetCenter(center); err != nil {
		return err
	}
	e.pipeline.Invalidate()
	return nil
}

func (e *Engine) SetRadius(radius float64) error {
	if err := e.view.SetRadius(radius); err != nil {
		return err
	}
	e.pipeline.Invalidate()
	return nil
}

func (e *Engine) Size() (width, height int) {
	return e.view.Size()
}

// SetSize resizes the viewport and recreates the render target.
func (e *Engine) SetSize(width, height int) error {
	return e.HandleEvent(viewport.Resize{Width: width, Height: height})
}

// SetPosition places the viewport within the surface.
func (e *Engine) SetPosition(position mgl64.Vec2) {
	e.view.SetPosition(position)
}

func (e *Engine) PixelToPlane(p mgl64.Vec2) mgl64.Vec2 { return e.view.PixelToPlane(p) }
func (e *Engine) PlaneToPixel(q mgl64.Vec2) mgl64.Vec2 { return e.view.PlaneToPixel(q) }

func (e *Engine) MaxIters() int {
	return e.pipeline.MaxIters()
}

func (e *Engine) SetMaxIters(n int) error {
	if err := checkMaxIters(n); err != nil {
		return err
	}
	e.pipeline.SetMaxIters(n)
	return nil
}

func (e *Engine) ResolutionScale() float32 {
	return e.pipeline.Scale()
}

func (e *Engine) SetResolutionScale(scale float32) error {
	if err := checkScale(scale); err != nil {
		return err
	}
	return e.pipeline.Resize(scale)
}

func (e *Engine) ColorFunction() *programs.ColorFunction {
	return e.colorFunc
}

// SetColorFunction recompiles the program around cf. On failure the previous
// color function and program stay active and a *shader.CompileError is returned.
// Uniform values previously set for cf are restored.
func (e *Engine) SetColorFunction(cf *programs.ColorFunction) error {
	if cf == nil {
		return ErrNoColorFunction
	}

	prog, err := shader.Build(e.device, shader.Compose(cf, e.kernel))
	if err != nil {
		e.log.Error("color function rejected", "name", cf.Name, "err", err)
		return err
	}

	for _, u := range cf.Uniforms {
		if err := prog.SetFloat(u.Name, e.uniformValue(cf, u)); err != nil {
			prog.Delete()
			return err
		}
	}

	if err := e.pipeline.SetProgram(prog); err != nil {
		prog.Delete()
		return err
	}

	if e.program != nil {
		e.program.Delete()
	}
	e.program = prog
	e.colorFunc = cf

	e.log.Debug("color function loaded", "name", cf.Name)
	return nil
}

// SetUniform sets a parameter of the active color function.
// Names the color function does not declare give a *shader.UnknownUniformError.
func (e *Engine) SetUniform(name string, v float32) error {
	if _, ok := e.colorFunc.Uniform(name); !ok {
		return &shader.UnknownUniformError{Name: name}
	}
	if err := e.program.SetFloat(name, v); err != nil {
		return err
	}

	values, ok := e.values[e.colorFunc]
	if !ok {
		values = make(map[string]float32)
		e.values[e.colorFunc] = values
	}
	values[name] = v

	e.pipeline.Invalidate()
	return nil
}

// Uniform returns the live value of a parameter of the active color function.
func (e *Engine) Uniform(name string) (float32, error) {
	u, ok := e.colorFunc.Uniform(name)
	if !ok {
		return 0, &shader.UnknownUniformError{Name: name}
	}
	return e.uniformValue(e.colorFunc, u), nil
}

func (e *Engine) uniformValue(cf *programs.ColorFunction, u programs.Uniform) float32 {
	if v, ok := e.values[cf][u.Name]; ok {
		return v
	}
	return u.Default
}

// RenderSwatch draws a width by height strip previewing cf with its live uniform values.
func (e *Engine) RenderSwatch(cf *programs.ColorFunction, width, height int) (image.Image, error) {
	if cf == nil {
		return nil, ErrNoColorFunction
	}
	if width <= 0 || height <= 0 {
		return nil, &viewport.InvalidRangeError{Name: "swatch size", Value: fmt.Sprintf("%dx%d", width, height)}
	}

	prog, err := shader.Build(e.device, shader.ComposePreview(cf))
	if err != nil {
		return nil, err
	}
	defer prog.Delete()

	for _, u := range cf.Uniforms {
		if err := prog.SetFloat(u.Name, e.uniformValue(cf, u)); err != nil {
			return nil, err
		}
	}

	return render.Swatch(e.device, prog, width, height)
}

func checkScale(scale float32) error {
	s := float64(scale)
	if !(s > 0) || math.IsInf(s, 0) {
		return &viewport.InvalidRangeError{Name: "resolution scale", Value: fmt.Sprint(scale)}
	}
	return nil
}

func checkMaxIters(n int) error {
	if n <= 0 || n > math.MaxInt32 {
		return &viewport.InvalidRangeError{Name: "max iterations", Value: fmt.Sprint(n)}
	}
	return nil
}
