package programs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrNoSource      = errors.New("color function has no source")
	ErrDuplicateName = errors.New("color function already registered")
)

func NumColorFunctions() int {
	return len(colorFunctions)
}

func GetColorFunction(i int) *ColorFunction {
	return colorFunctions[i]
}

// ColorFunctions returns the registered palette in registration order.
func ColorFunctions() []*ColorFunction {
	return append([]*ColorFunction(nil), colorFunctions...)
}

// Lookup finds a registered color function by name.
func Lookup(name string) (*ColorFunction, bool) {
	for _, cf := range colorFunctions {
		if cf.Name == name {
			return cf, true
		}
	}
	return nil, false
}

// RegisterColorFunction adds cf to the palette offered to the user.
func RegisterColorFunction(cf *ColorFunction) error {
	if strings.TrimSpace(cf.Source) == "" {
		return fmt.Errorf("%q: %w", cf.Name, ErrNoSource)
	}
	if _, ok := Lookup(cf.Name); ok {
		return fmt.Errorf("%q: %w", cf.Name, ErrDuplicateName)
	}
	colorFunctions = append(colorFunctions, cf)
	return nil
}

var colorFunctions []*ColorFunction

// ColorFunction is a fragment of GLSL defining
//
//	vec3 get_color(int iterations)
//
// along with the float uniforms that fragment reads.
// The iteration kernel calls get_color for every escaped sample.
type ColorFunction struct {
	Name     string
	Source   string
	Uniforms []Uniform
}

func NewColorFunction(name, source string) *ColorFunction {
	return &ColorFunction{
		Name:   name,
		Source: source,
	}
}

// AddUniform declares a float uniform. Declaration order is the order
// the uniforms appear in the composed shader.
func (cf *ColorFunction) AddUniform(name string, valid mgl32.Vec2, def float32) *ColorFunction {
	cf.Uniforms = append(cf.Uniforms, Uniform{
		Name:    name,
		Range:   valid,
		Default: def,
	})
	return cf
}

func (cf *ColorFunction) Uniform(name string) (Uniform, bool) {
	for _, u := range cf.Uniforms {
		if u.Name == name {
			return u, true
		}
	}
	return Uniform{}, false
}

func mustRegister(cf *ColorFunction) {
	if err := RegisterColorFunction(cf); err != nil {
		panic(err)
	}
}

func init() {
	for _, cf := range []*ColorFunction{Palette, HSV, Exp, Waves} {
		mustRegister(cf)
	}
}
