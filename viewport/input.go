package viewport

import (
	"github.com/go-gl/mathgl/mgl64"
)

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Event is an input event delivered by the windowing layer. Positions are window pixels.
type Event interface {
	isEvent()
}

type PointerMove struct {
	Pos mgl64.Vec2
}

// ButtonPress may be observed by other consumers first; Handled is set when one of them claimed it.
type ButtonPress struct {
	Button  Button
	Pos     mgl64.Vec2
	Handled bool
}

type ButtonRelease struct {
	Button Button
	Pos    mgl64.Vec2
}

// Scroll is a wheel movement at Pos. Positive Notches zoom in.
type Scroll struct {
	Pos     mgl64.Vec2
	Notches float64
}

type Resize struct {
	Width, Height int
}

func (PointerMove) isEvent()   {}
func (ButtonPress) isEvent()   {}
func (ButtonRelease) isEvent() {}
func (Scroll) isEvent()        {}
func (Resize) isEvent()        {}
