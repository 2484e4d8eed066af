package viewport

import (
	"github.com/go-gl/mathgl/mgl64"
)

// PixelToPlane maps a window pixel to the complex plane.
// Pixel y grows downwards and plane y grows upwards. Points outside the
// viewport are not clamped.
func (v *View) PixelToPlane(p mgl64.Vec2) mgl64.Vec2 {
	scale := v.PixelSize()
	local := p.Sub(v.position)
	return mgl64.Vec2{
		v.center[0] + (local[0]-float64(v.width)/2)*scale,
		v.center[1] - (local[1]-float64(v.height)/2)*scale,
	}
}

// PlaneToPixel is the inverse of PixelToPlane.
func (v *View) PlaneToPixel(q mgl64.Vec2) mgl64.Vec2 {
	scale := v.PixelSize()
	return mgl64.Vec2{
		v.position[0] + float64(v.width)/2 + (q[0]-v.center[0])/scale,
		v.position[1] + float64(v.height)/2 - (q[1]-v.center[1])/scale,
	}
}
