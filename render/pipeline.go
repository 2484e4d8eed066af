// Package render owns the offscreen target the fractal is drawn into and
// decides how each frame refreshes and presents it.
package render

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/stewi1014/glmandel/gpu"
	"github.com/stewi1014/glmandel/shader"
	"github.com/stewi1014/glmandel/viewport"
)

var (
	ErrNoProgram = errors.New("render: no program")
	ErrNoTarget  = errors.New("render: no render target")
)

// FrameState tracks accumulation. Index is the number of samples blended into
// the target since the last invalidation.
type FrameState struct {
	Index uint32
	Dirty bool
}

// Pipeline draws a view through a program into its single render target.
type Pipeline struct {
	log    *slog.Logger
	device gpu.Device
	view   *viewport.View

	program  *shader.Program
	target   gpu.Target
	scale    float32
	maxIters int

	mode     Mode
	strategy strategy
	state    FrameState
}

func NewPipeline(device gpu.Device, view *viewport.View, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		log:      log,
		device:   device,
		view:     view,
		scale:    1,
		maxIters: 1,
		strategy: strategyFor(Progressive),
		state:    FrameState{Dirty: true},
	}
}

func (p *Pipeline) Mode() Mode               { return p.mode }
func (p *Pipeline) Scale() float32           { return p.scale }
func (p *Pipeline) MaxIters() int            { return p.maxIters }
func (p *Pipeline) FrameState() FrameState   { return p.state }
func (p *Pipeline) Target() gpu.Target       { return p.target }
func (p *Pipeline) Program() *shader.Program { return p.program }
func (p *Pipeline) Layout() Layout           { return NewLayout(p.view, p.scale) }

func (p *Pipeline) SetMode(m Mode) {
	if m == p.mode {
		return
	}
	p.mode = m
	p.strategy = strategyFor(m)
	p.Invalidate()
}

// Invalidate discards accumulated samples. The next frame redraws from scratch.
func (p *Pipeline) Invalidate() {
	p.state = FrameState{Dirty: true}
}

// SetProgram switches to prog and pushes the current kernel inputs to it.
// The caller keeps ownership of the previous program.
func (p *Pipeline) SetProgram(prog *shader.Program) error {
	if p.target != nil {
		if err := pushInputs(prog, p.Layout(), p.maxIters, 0); err != nil {
			return err
		}
	}
	p.program = prog
	p.Invalidate()
	return nil
}

func (p *Pipeline) SetMaxIters(n int) {
	p.maxIters = n
	p.Invalidate()
}

// Resize recreates the render target for the view's current size at scale.
// The old target is only released once the new one exists.
func (p *Pipeline) Resize(scale float32) error {
	width, height := p.view.Size()
	tw, th := TargetSize(width, height, scale)

	target, err := p.device.NewTarget(tw, th)
	if err != nil {
		return fmt.Errorf("creating %dx%d render target: %w", tw, th, err)
	}

	if p.target != nil {
		p.target.Delete()
	}
	p.target = target
	p.scale = scale
	p.Invalidate()

	p.log.Debug("render target resized", "width", tw, "height", th, "scale", scale)
	return nil
}

// Borrow swaps in a new target at scale and keeps the current one aside.
// restore deletes the borrowed target and puts the previous target and scale
// back. It allocates nothing, so it cannot fail.
func (p *Pipeline) Borrow(scale float32) (restore func(), err error) {
	width, height := p.view.Size()
	tw, th := TargetSize(width, height, scale)

	target, err := p.device.NewTarget(tw, th)
	if err != nil {
		return nil, fmt.Errorf("creating %dx%d render target: %w", tw, th, err)
	}

	kept, keptScale := p.target, p.scale
	p.target, p.scale = target, scale
	p.Invalidate()

	return func() {
		target.Delete()
		p.target, p.scale = kept, keptScale
		p.Invalidate()
	}, nil
}

// Frame advances the active strategy by one display frame.
func (p *Pipeline) Frame() error {
	if err := p.ready(); err != nil {
		return err
	}
	return p.strategy.frame(p, p.Layout())
}

// RenderOnce draws a single full resolution pass and builds mipmaps,
// whatever the display mode.
func (p *Pipeline) RenderOnce() error {
	if err := p.ready(); err != nil {
		return err
	}
	return p.renderOnce(p.Layout())
}

// Capture reads back the render target.
func (p *Pipeline) Capture() (*image.RGBA, error) {
	if p.target == nil {
		return nil, ErrNoTarget
	}
	return p.device.ReadPixels(p.target)
}

func (p *Pipeline) Close() {
	if p.target != nil {
		p.target.Delete()
		p.target = nil
	}
}

func (p *Pipeline) ready() error {
	if p.program == nil {
		return ErrNoProgram
	}
	if p.target == nil {
		return ErrNoTarget
	}
	return nil
}

func (p *Pipeline) renderOnce(l Layout) error {
	if err := p.push(l, 0); err != nil {
		return err
	}
	p.device.Draw(p.target, p.program.Handle(), gpu.BlendReplace)
	p.device.GenerateMipmap(p.target)

	p.state = FrameState{}
	return nil
}

func (p *Pipeline) push(l Layout, frame uint32) error {
	return pushInputs(p.program, l, p.maxIters, frame)
}

func pushInputs(prog *shader.Program, l Layout, maxIters int, frame uint32) error {
	return errors.Join(
		prog.SetDVec2(shader.UniformXRange, l.XRange),
		prog.SetDVec2(shader.UniformYRange, l.YRange),
		prog.SetUVec2(shader.UniformSize, uint32(l.Width), uint32(l.Height)),
		prog.SetInt(shader.UniformMaxIters, int32(maxIters)),
		prog.SetInt(shader.UniformFrame, int32(frame)),
	)
}
