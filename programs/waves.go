package programs

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders/waves.glsl
var wavesSource string

var Waves = NewColorFunction("waves", wavesSource).
	AddUniform("colorMult", mgl32.Vec2{1, 300}, 200)
