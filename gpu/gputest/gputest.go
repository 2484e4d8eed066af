// Package gputest provides an in-memory gpu.Device that records what it was asked to do.
package gputest

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"regexp"

	"github.com/stewi1014/glmandel/gpu"
)

var (
	ErrTargetUnavailable = errors.New("gputest: target allocation failed")
	ErrDeleted           = errors.New("gputest: use of deleted resource")
)

var (
	uniformDecl   = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)
	getColorDecl  = regexp.MustCompile(`vec3\s+get_color\s*\(\s*int\b`)
	versionHeader = regexp.MustCompile(`^#version \d+`)
)

// Fill is the colour every drawn target reads back as.
var Fill = color.RGBA{R: 0x20, G: 0x40, B: 0x80, A: 0xff}

type Device struct {
	Programs []*Program
	Targets  []*Target
	Draws    []Draw
	Presents []Present

	// FailTargets makes the next n NewTarget calls fail.
	FailTargets int
}

var _ gpu.Device = (*Device)(nil)

type Draw struct {
	Target   *Target
	Program  *Program
	Blend    gpu.BlendMode
	Uniforms map[string]any
}

type Present struct {
	Target *Target
	Rect   gpu.Rect
}

func New() *Device {
	return &Device{}
}

func (d *Device) CompileFragment(source string) (gpu.Program, error) {
	if !versionHeader.MatchString(source) {
		return nil, fmt.Errorf("0:1(1): error: missing #version directive")
	}
	if !getColorDecl.MatchString(source) {
		return nil, fmt.Errorf("0:0(0): error: no function with name 'get_color'")
	}

	p := &Program{
		ID:        len(d.Programs) + 1,
		Source:    source,
		locations: map[string]int32{},
		values:    map[int32]any{},
	}
	for _, m := range uniformDecl.FindAllStringSubmatch(source, -1) {
		if _, ok := p.locations[m[1]]; !ok {
			p.locations[m[1]] = int32(len(p.locations))
		}
	}
	d.Programs = append(d.Programs, p)
	return p, nil
}

func (d *Device) NewTarget(width, height int) (gpu.Target, error) {
	if d.FailTargets > 0 {
		d.FailTargets--
		return nil, ErrTargetUnavailable
	}
	t := &Target{Width: width, Height: height}
	d.Targets = append(d.Targets, t)
	return t, nil
}

func (d *Device) Draw(dst gpu.Target, p gpu.Program, blend gpu.BlendMode) {
	t, prog := dst.(*Target), p.(*Program)
	if t.Deleted || prog.Deleted {
		panic(ErrDeleted)
	}
	t.Draws++
	t.Mipmapped = false
	d.Draws = append(d.Draws, Draw{
		Target:   t,
		Program:  prog,
		Blend:    blend,
		Uniforms: prog.Snapshot(),
	})
}

func (d *Device) GenerateMipmap(t gpu.Target) {
	t.(*Target).Mipmapped = true
}

func (d *Device) Present(src gpu.Target, rect gpu.Rect) {
	d.Presents = append(d.Presents, Present{Target: src.(*Target), Rect: rect})
}

func (d *Device) ReadPixels(t gpu.Target) (*image.RGBA, error) {
	target := t.(*Target)
	if target.Deleted {
		return nil, ErrDeleted
	}
	img := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	if target.Draws == 0 {
		return img, nil
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = Fill.R
		img.Pix[i+1] = Fill.G
		img.Pix[i+2] = Fill.B
		img.Pix[i+3] = Fill.A
	}
	return img, nil
}

// LastDraw returns the most recent draw call.
func (d *Device) LastDraw() Draw {
	return d.Draws[len(d.Draws)-1]
}

// LiveTargets returns the targets that have not been deleted.
func (d *Device) LiveTargets() []*Target {
	var live []*Target
	for _, t := range d.Targets {
		if !t.Deleted {
			live = append(live, t)
		}
	}
	return live
}

type Program struct {
	ID      int
	Source  string
	Deleted bool
	// Lookups counts UniformLocation calls.
	Lookups int

	locations map[string]int32
	values    map[int32]any
}

func (p *Program) UniformLocation(name string) int32 {
	p.Lookups++
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return -1
}

func (p *Program) set(loc int32, v any) {
	if loc < 0 {
		return
	}
	p.values[loc] = v
}

func (p *Program) Uniform1f(loc int32, v float32)    { p.set(loc, v) }
func (p *Program) Uniform1i(loc int32, v int32)      { p.set(loc, v) }
func (p *Program) Uniform2ui(loc int32, x, y uint32) { p.set(loc, [2]uint32{x, y}) }
func (p *Program) Uniform2d(loc int32, x, y float64) { p.set(loc, [2]float64{x, y}) }

func (p *Program) Delete() { p.Deleted = true }

// Value returns the last value set for a uniform, or nil.
func (p *Program) Value(name string) any {
	loc, ok := p.locations[name]
	if !ok {
		return nil
	}
	return p.values[loc]
}

// Snapshot returns every uniform value that has been set, keyed by name.
func (p *Program) Snapshot() map[string]any {
	out := make(map[string]any, len(p.values))
	for name, loc := range p.locations {
		if v, ok := p.values[loc]; ok {
			out[name] = v
		}
	}
	return out
}

type Target struct {
	Width, Height int
	Deleted       bool
	Mipmapped     bool
	Draws         int
}

func (t *Target) Size() (int, int) { return t.Width, t.Height }
func (t *Target) Delete()          { t.Deleted = true }
