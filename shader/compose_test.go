package shader

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKernel = "uniform int maxIters;\nvoid main() { get_color(maxIters); }\n"

func TestCompose(t *testing.T) {
	cf := programs.NewColorFunction("two", "vec3 get_color(int i) { return vec3(a, b, 0); }").
		AddUniform("a", mgl32.Vec2{0, 1}, 0.5).
		AddUniform("b", mgl32.Vec2{0, 1}, 0.25)

	c := Compose(cf, testKernel)

	want := "#version 460\n\n" +
		"uniform float a;\n" +
		"uniform float b;\n" +
		cf.Source + "\n" +
		testKernel
	assert.Equal(t, want, c.Source)
	assert.Equal(t, "two", c.Name)
	assert.Equal(t, []string{"a", "b", "size", "xRange", "yRange", "maxIters", "frame"}, c.Uniforms)
	assert.True(t, c.Declares("frame"))
	assert.False(t, c.Declares("colorMult"))
}

func TestComposeDefaultKernel(t *testing.T) {
	c := Compose(programs.Palette, DefaultKernel)

	require.True(t, strings.HasPrefix(c.Source, Header+"uniform float colorMult;\n"))
	assert.Less(t, strings.Index(c.Source, "vec3 get_color"), strings.Index(c.Source, "void main()"))
	for _, name := range KernelUniforms {
		assert.Contains(t, DefaultKernel, " "+name+";", name)
	}
}

func TestComposePreview(t *testing.T) {
	c := ComposePreview(programs.HSV)

	assert.Equal(t, "hsv preview", c.Name)
	assert.Equal(t, []string{"colorMult", "range", "size"}, c.Uniforms)
	assert.Contains(t, c.Source, programs.HSV.Source)
	assert.NotContains(t, c.Source, "maxIters")
}
