// Package glgpu implements gpu.Device on OpenGL 4.6 core.
//
// A context must be current on the calling thread for New and every method.
package glgpu

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/stewi1014/glmandel/gpu"
)

var _ gpu.Device = (*Device)(nil)

type Device struct {
	log *slog.Logger

	vao uint32
	vbo uint32

	// blitVAO has no attributes; the blit builds its quad from gl_VertexID.
	blitVAO  uint32
	blit     uint32
	blitRect int32
	blitTex  int32

	maxTextureSize int32

	surfaceWidth  int
	surfaceHeight int
}

// New loads the GL entry points for the current context. debug routes
// driver debug output to log.
func New(log *slog.Logger, debug bool) (*Device, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	err := gl.Init()
	if err != nil {
		return nil, fmt.Errorf("gl.Init: %w", err)
	}

	d := &Device{log: log}
	log.Info("OpenGL initialised",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)

	if debug {
		gl.DebugMessageCallback(d.glDebugMessage, nil)
		gl.Enable(gl.DEBUG_OUTPUT)
	}

	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &d.maxTextureSize)

	// One triangle covering the whole of clip space.
	verticies := []float32{
		-3, -2,
		0, 3,
		3, -2,
	}

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verticies)*4, gl.Ptr(verticies), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)

	gl.GenVertexArrays(1, &d.blitVAO)

	d.blit, err = linkProgram(blitVertexShader, blitFragmentShader)
	if err != nil {
		d.Delete()
		return nil, fmt.Errorf("blit program: %w", err)
	}
	d.blitRect = gl.GetUniformLocation(d.blit, gl.Str("rect\x00"))
	d.blitTex = gl.GetUniformLocation(d.blit, gl.Str("tex\x00"))

	return d, nil
}

// SetSurfaceSize records the default framebuffer size in pixels.
func (d *Device) SetSurfaceSize(width, height int) {
	d.surfaceWidth, d.surfaceHeight = width, height
}

func (d *Device) CompileFragment(source string) (gpu.Program, error) {
	id, err := linkProgram(fullscreenVertexShader, source)
	if err != nil {
		return nil, err
	}
	return &program{id: id}, nil
}

func (d *Device) NewTarget(width, height int) (gpu.Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("target size %dx%d", width, height)
	}
	if int32(width) > d.maxTextureSize || int32(height) > d.maxTextureSize {
		return nil, fmt.Errorf("target size %dx%d exceeds GL_MAX_TEXTURE_SIZE %d", width, height, d.maxTextureSize)
	}

	t := &target{width: width, height: height}

	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Delete()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	d.log.Debug("render target created", "width", width, "height", height)
	return t, nil
}

func (d *Device) Draw(dst gpu.Target, p gpu.Program, blend gpu.BlendMode) {
	t := dst.(*target)

	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))

	switch blend {
	case gpu.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendEquation(gl.FUNC_ADD)
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ZERO, gl.ONE)
	default:
		gl.Disable(gl.BLEND)
	}

	gl.UseProgram(p.(*program).id)
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)

	gl.Disable(gl.BLEND)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if t.mipmapped {
		gl.BindTexture(gl.TEXTURE_2D, t.texture)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		t.mipmapped = false
	}
}

func (d *Device) GenerateMipmap(dst gpu.Target) {
	t := dst.(*target)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	t.mipmapped = true
}

func (d *Device) Present(src gpu.Target, rect gpu.Rect) {
	t := src.(*target)
	sw, sh := float32(d.surfaceWidth), float32(d.surfaceHeight)
	if sw == 0 || sh == 0 {
		return
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(d.surfaceWidth), int32(d.surfaceHeight))
	gl.Disable(gl.BLEND)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	// Bottom left then top right, in clip space.
	gl.UseProgram(d.blit)
	gl.Uniform4f(d.blitRect,
		2*float32(rect.Min[0])/sw-1,
		1-2*float32(rect.Max[1])/sh,
		2*float32(rect.Max[0])/sw-1,
		1-2*float32(rect.Min[1])/sh,
	)
	gl.Uniform1i(d.blitTex, 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.BindVertexArray(d.blitVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

func (d *Device) ReadPixels(src gpu.Target) (*image.RGBA, error) {
	t := src.(*target)
	stride := t.width * 4
	buf := make([]uint8, stride*t.height)

	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(t.width), int32(t.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(buf))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		return nil, fmt.Errorf("glReadPixels: 0x%x", errCode)
	}

	// GL rows start at the bottom.
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+stride]
		copy(row, buf[(t.height-1-y)*stride:])
		for x := 3; x < stride; x += 4 {
			row[x] = 0xff
		}
	}
	return img, nil
}

// Delete releases the device's own GL objects.
func (d *Device) Delete() {
	if d.blit != 0 {
		gl.DeleteProgram(d.blit)
		d.blit = 0
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
		d.vbo = 0
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
	if d.blitVAO != 0 {
		gl.DeleteVertexArrays(1, &d.blitVAO)
		d.blitVAO = 0
	}
}

type target struct {
	fbo       uint32
	texture   uint32
	width     int
	height    int
	mipmapped bool
}

func (t *target) Size() (int, int) {
	return t.width, t.height
}

func (t *target) Delete() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.texture != 0 {
		gl.DeleteTextures(1, &t.texture)
		t.texture = 0
	}
}
