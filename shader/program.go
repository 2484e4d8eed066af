package shader

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/glmandel/gpu"
)

// Program is a compiled Composition. Uniforms are addressed by name and their
// locations are looked up once per program.
type Program struct {
	composition Composition
	handle      gpu.Program
	locations   map[string]int32
}

// Build compiles c on device. Compiler failures are returned as *CompileError.
func Build(device gpu.Device, c Composition) (*Program, error) {
	handle, err := device.CompileFragment(c.Source)
	if err != nil {
		return nil, &CompileError{Name: c.Name, Log: err.Error()}
	}

	return &Program{
		composition: c,
		handle:      handle,
		locations:   make(map[string]int32, len(c.Uniforms)),
	}, nil
}

func (p *Program) Composition() Composition {
	return p.composition
}

func (p *Program) Handle() gpu.Program {
	return p.handle
}

// location may be -1 for a declared uniform the compiler optimised away;
// setting it is then a no-op.
func (p *Program) location(name string) (int32, error) {
	if loc, ok := p.locations[name]; ok {
		return loc, nil
	}
	if !p.composition.Declares(name) {
		return -1, &UnknownUniformError{Name: name}
	}

	loc := p.handle.UniformLocation(name)
	p.locations[name] = loc
	return loc, nil
}

func (p *Program) SetFloat(name string, v float32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.handle.Uniform1f(loc, v)
	return nil
}

func (p *Program) SetInt(name string, v int32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.handle.Uniform1i(loc, v)
	return nil
}

func (p *Program) SetUVec2(name string, x, y uint32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.handle.Uniform2ui(loc, x, y)
	return nil
}

func (p *Program) SetDVec2(name string, v mgl64.Vec2) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.handle.Uniform2d(loc, v[0], v[1])
	return nil
}

func (p *Program) Delete() {
	p.handle.Delete()
	p.locations = nil
}
