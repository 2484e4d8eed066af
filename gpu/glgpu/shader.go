package glgpu

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
)

const fullscreenVertexShader = `#version 460

layout(location = 0) in vec2 vert;

void main()
{
    gl_Position = vec4(vert, 0.0, 1.0);
}
`

const blitVertexShader = `#version 460

uniform vec4 rect;

out vec2 uv;

void main()
{
    vec2 corner = vec2(gl_VertexID & 1, gl_VertexID >> 1);
    uv = corner;
    gl_Position = vec4(mix(rect.xy, rect.zw, corner), 0.0, 1.0);
}
`

const blitFragmentShader = `#version 460

uniform sampler2D tex;

in vec2 uv;
out vec4 outColor;

void main()
{
    outColor = vec4(texture(tex, uv).rgb, 1.0);
}
`

type program struct {
	id uint32
}

func (p *program) UniformLocation(name string) int32 {
	return gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
}

func (p *program) Uniform1f(loc int32, v float32)    { gl.ProgramUniform1f(p.id, loc, v) }
func (p *program) Uniform1i(loc int32, v int32)      { gl.ProgramUniform1i(p.id, loc, v) }
func (p *program) Uniform2ui(loc int32, x, y uint32) { gl.ProgramUniform2ui(p.id, loc, x, y) }
func (p *program) Uniform2d(loc int32, x, y float64) { gl.ProgramUniform2d(p.id, loc, x, y) }

func (p *program) Delete() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

func linkProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSource+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	id := gl.CreateProgram()
	gl.AttachShader(id, vertexShader)
	gl.AttachShader(id, fragmentShader)
	gl.BindFragDataLocation(id, 0, gl.Str("outColor\x00"))
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetProgramInfoLog(id, l, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return 0, fmt.Errorf("failed to link program: %v", strings.TrimRight(log, "\x00"))
	}

	return id, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	defer runtime.KeepAlive(source)
	cstring, free := gl.Strs(source)
	defer free()

	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, 1, cstring, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetShaderInfoLog(shader, l, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile: %v", strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}
