// Package gpu is the small set of GPU operations the render pipeline needs.
//
// Implementations are not safe for concurrent use. Every call must come from
// the goroutine that owns the graphics context.
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
)

type BlendMode int

const (
	// BlendReplace overwrites the destination.
	BlendReplace BlendMode = iota
	// BlendAlpha mixes colour by source alpha and keeps the destination alpha.
	BlendAlpha
)

func (b BlendMode) String() string {
	switch b {
	case BlendReplace:
		return "replace"
	case BlendAlpha:
		return "alpha"
	}
	return "unknown"
}

// Rect is a rectangle in surface pixels, y growing downwards.
type Rect struct {
	Min, Max mgl64.Vec2
}

func (r Rect) Dx() float64 { return r.Max[0] - r.Min[0] }
func (r Rect) Dy() float64 { return r.Max[1] - r.Min[1] }

// Program is a linked fragment program.
// Location -1 is accepted by every setter and ignored.
type Program interface {
	UniformLocation(name string) int32
	Uniform1f(loc int32, v float32)
	Uniform1i(loc int32, v int32)
	Uniform2ui(loc int32, x, y uint32)
	Uniform2d(loc int32, x, y float64)
	Delete()
}

// Target is an offscreen colour buffer.
type Target interface {
	Size() (width, height int)
	Delete()
}

type Device interface {
	// CompileFragment compiles and links a fragment shader against a full screen
	// vertex stage. The returned error carries the compiler log.
	CompileFragment(source string) (Program, error)

	NewTarget(width, height int) (Target, error)

	// Draw covers every pixel of dst with the output of p.
	Draw(dst Target, p Program, blend BlendMode)

	// GenerateMipmap rebuilds the mip chain of t. Drawing into t again discards it.
	GenerateMipmap(t Target)

	// Present clears the surface and draws src stretched over rect.
	Present(src Target, rect Rect)

	// ReadPixels copies t into an opaque image, top row first.
	ReadPixels(t Target) (*image.RGBA, error)
}
