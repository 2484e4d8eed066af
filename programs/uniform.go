package programs

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Uniform is a user adjustable float parameter of a ColorFunction.
type Uniform struct {
	Name    string
	Range   mgl32.Vec2
	Default float32
}

func (u Uniform) Min() float32 { return u.Range[0] }
func (u Uniform) Max() float32 { return u.Range[1] }

// Clamp limits v to the uniform's valid range.
func (u Uniform) Clamp(v float32) float32 {
	return mgl32.Clamp(v, u.Range[0], u.Range[1])
}
