package programs

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders/palette.glsl
var paletteSource string

var Palette = NewColorFunction("palette", paletteSource).
	AddUniform("colorMult", mgl32.Vec2{1, 300}, 200)
