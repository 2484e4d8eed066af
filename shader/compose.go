package shader

import (
	"fmt"
	"strings"

	"github.com/stewi1014/glmandel/programs"
)

const Header = "#version 460\n\n"

// Inputs every iteration kernel reads, in addition to the color function's uniforms.
const (
	UniformSize     = "size"
	UniformXRange   = "xRange"
	UniformYRange   = "yRange"
	UniformMaxIters = "maxIters"
	UniformFrame    = "frame"
)

var KernelUniforms = []string{UniformSize, UniformXRange, UniformYRange, UniformMaxIters, UniformFrame}

// Preview program inputs.
const (
	UniformPreviewRange = "range"
	UniformPreviewSize  = "size"
)

const previewMain = `
uniform int range;
uniform int size;

out vec4 outColor;

void main()
{
    int i = int((gl_FragCoord.x / size) * range);
    outColor = vec4(get_color(i), 1);
}
`

// Composition is the full source of a fragment program and the uniforms it declares.
type Composition struct {
	Name     string
	Source   string
	Uniforms []string
}

func (c Composition) Declares(name string) bool {
	for _, u := range c.Uniforms {
		if u == name {
			return true
		}
	}
	return false
}

// Compose joins the header, a uniform declaration per color function parameter,
// the color function and the iteration kernel.
func Compose(cf *programs.ColorFunction, kernel string) Composition {
	c := compose(cf, kernel)
	c.Uniforms = append(c.Uniforms, KernelUniforms...)
	return c
}

// ComposePreview builds a program drawing a horizontal strip of get_color(0..range).
func ComposePreview(cf *programs.ColorFunction) Composition {
	c := compose(cf, previewMain)
	c.Name = cf.Name + " preview"
	c.Uniforms = append(c.Uniforms, UniformPreviewRange, UniformPreviewSize)
	return c
}

func compose(cf *programs.ColorFunction, main string) Composition {
	var b strings.Builder
	c := Composition{Name: cf.Name}

	b.WriteString(Header)
	for _, u := range cf.Uniforms {
		fmt.Fprintf(&b, "uniform float %s;\n", u.Name)
		c.Uniforms = append(c.Uniforms, u.Name)
	}
	b.WriteString(cf.Source)
	b.WriteByte('\n')
	b.WriteString(main)

	c.Source = b.String()
	return c
}
