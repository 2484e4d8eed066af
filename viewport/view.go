// Package viewport maps between window pixels and the complex plane, and turns
// pointer input into pan and zoom operations on a View.
package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultRadius = 2
	DefaultWidth  = 100
	DefaultHeight = 100

	// MaxRadius stops zooming out past the point where the set is a speck.
	MaxRadius = 4
	// MinRadius keeps the radius representable; float64 precision runs out long before.
	MinRadius = 1e-300
)

// View is the visible region of the complex plane and the pixel rectangle it is drawn into.
//
// center is the plane point under the middle of the viewport and radius is half the
// visible plane height. xRange and yRange are derived and recomputed by every mutator.
type View struct {
	center mgl64.Vec2
	radius float64

	position mgl64.Vec2
	width    int
	height   int

	xRange mgl64.Vec2
	yRange mgl64.Vec2
}

func New() *View {
	v := &View{
		radius: DefaultRadius,
		width:  DefaultWidth,
		height: DefaultHeight,
	}
	v.updateRange()
	return v
}

func (v *View) updateRange() {
	aspect := v.Aspect()
	v.xRange = mgl64.Vec2{v.center[0] - aspect*v.radius, v.center[0] + aspect*v.radius}
	v.yRange = mgl64.Vec2{v.center[1] - v.radius, v.center[1] + v.radius}
}

func (v *View) Center() mgl64.Vec2 { return v.center }
func (v *View) Radius() float64    { return v.radius }

func (v *View) Position() mgl64.Vec2 { return v.position }

func (v *View) Size() (width, height int) { return v.width, v.height }

// Aspect is width over height.
func (v *View) Aspect() float64 {
	return float64(v.width) / float64(v.height)
}

// Range returns the plane rectangle as (min, max) pairs for each axis.
func (v *View) Range() (xRange, yRange mgl64.Vec2) {
	return v.xRange, v.yRange
}

// PixelSize is the plane distance covered by one viewport pixel along either axis.
func (v *View) PixelSize() float64 {
	return 2 * v.radius / float64(v.height)
}

func (v *View) SetCenter(center mgl64.Vec2) error {
	if !finite(center[0]) || !finite(center[1]) {
		return invalid("center", "%v", center)
	}
	v.center = center
	v.updateRange()
	return nil
}

func (v *View) SetRadius(radius float64) error {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return invalid("radius", "%v", radius)
	}
	v.radius = radius
	v.updateRange()
	return nil
}

func (v *View) SetPosition(position mgl64.Vec2) {
	v.position = position
}

func (v *View) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return invalid("viewport size", "%dx%d", width, height)
	}
	v.width, v.height = width, height
	v.updateRange()
	return nil
}

// Drag moves the view so the plane point under pixel from ends up under pixel to.
func (v *View) Drag(from, to mgl64.Vec2) {
	v.Translate(v.PixelToPlane(from).Sub(v.PixelToPlane(to)))
}

// Translate moves the center by delta plane units.
func (v *View) Translate(delta mgl64.Vec2) {
	v.center = v.center.Add(delta)
	v.updateRange()
}

// ZoomAt divides the radius by factor while keeping the plane point under cursor fixed.
// The radius is clamped to [MinRadius, MaxRadius]. It reports whether the view changed.
func (v *View) ZoomAt(cursor mgl64.Vec2, factor float64) bool {
	radius := mgl64.Clamp(v.radius/factor, MinRadius, MaxRadius)
	if radius == v.radius || math.IsNaN(radius) {
		return false
	}
	before := v.PixelToPlane(cursor)

	v.radius = radius
	v.updateRange()

	after := v.PixelToPlane(cursor)
	v.center = v.center.Add(before.Sub(after))
	v.updateRange()
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
