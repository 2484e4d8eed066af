package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/glmandel/gpu"
	"github.com/stewi1014/glmandel/viewport"
)

// TargetSize is the render target size for a viewport at a resolution scale.
// Each dimension is rounded to the nearest pixel and is at least 1.
func TargetSize(width, height int, scale float32) (int, int) {
	round := func(n int) int {
		return max(1, int(math.Round(float64(n)*float64(scale))))
	}
	return round(width), round(height)
}

// Layout is how one frame maps the view onto the render target and back onto the surface.
type Layout struct {
	Width, Height int

	// XRange and YRange are the plane rectangle pushed to the kernel. They cover
	// exactly Width by Height target pixels, which after rounding may be slightly
	// more or less than the view's own rectangle.
	XRange, YRange mgl64.Vec2

	// Screen is where the target lands on the surface.
	Screen gpu.Rect
}

func NewLayout(view *viewport.View, scale float32) Layout {
	width, height := view.Size()
	tw, th := TargetSize(width, height, scale)

	topLeft := view.Position()
	covered := mgl64.Vec2{float64(tw) / float64(scale), float64(th) / float64(scale)}

	tl := view.PixelToPlane(topLeft)
	br := view.PixelToPlane(topLeft.Add(covered))

	l := Layout{
		Width:  tw,
		Height: th,
		XRange: mgl64.Vec2{tl[0], br[0]},
		YRange: mgl64.Vec2{br[1], tl[1]},
	}
	l.Screen = gpu.Rect{
		Min: view.PlaneToPixel(mgl64.Vec2{l.XRange[0], l.YRange[1]}),
		Max: view.PlaneToPixel(mgl64.Vec2{l.XRange[1], l.YRange[0]}),
	}
	return l
}
