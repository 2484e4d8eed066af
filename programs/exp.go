package programs

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders/exp.glsl
var expSource string

var Exp = NewColorFunction("exp", expSource).
	AddUniform("colorMult", mgl32.Vec2{1, 1000}, 200)
