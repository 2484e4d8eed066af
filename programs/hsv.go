package programs

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders/hsv.glsl
var hsvSource string

var HSV = NewColorFunction("hsv", hsvSource).
	AddUniform("colorMult", mgl32.Vec2{1.1, 5000}, 1000)
