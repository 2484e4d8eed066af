package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ZoomFactor is the radius divisor for one wheel notch.
const ZoomFactor = 1.1

type State int

const (
	Idle State = iota
	Panning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	}
	return "unknown"
}

// Effect describes what an event changed.
type Effect uint8

const (
	// EffectView means the center or radius changed.
	EffectView Effect = 1 << iota
	// EffectResize means the viewport size changed and size dependent resources are stale.
	EffectResize
	// EffectRender asks for a full re-render even though the view itself did not change.
	EffectRender
)

func (e Effect) Has(f Effect) bool {
	return e&f != 0
}

// Navigator is the pan and zoom state machine driving a View.
//
// Dragging with the primary button pans. The wheel zooms around the cursor in
// every state, including while a pan is in progress.
type Navigator struct {
	view   *View
	state  State
	anchor mgl64.Vec2
}

func NewNavigator(view *View) *Navigator {
	return &Navigator{view: view}
}

func (n *Navigator) State() State {
	return n.state
}

// Handle applies ev to the view. A Resize with a zero dimension, or a position
// or wheel movement that is not finite, is rejected with an InvalidRangeError
// and leaves the view untouched.
func (n *Navigator) Handle(ev Event) (Effect, error) {
	if err := checkEvent(ev); err != nil {
		return 0, err
	}

	switch ev := ev.(type) {
	case ButtonPress:
		if ev.Button != ButtonPrimary || ev.Handled || n.state != Idle {
			return 0, nil
		}
		n.state = Panning
		n.anchor = ev.Pos
		return 0, nil

	case PointerMove:
		if n.state != Panning || ev.Pos == n.anchor {
			return 0, nil
		}
		n.view.Drag(n.anchor, ev.Pos)
		n.anchor = ev.Pos
		return EffectView, nil

	case ButtonRelease:
		if ev.Button != ButtonPrimary || n.state != Panning {
			return 0, nil
		}
		n.state = Idle
		if ev.Pos != n.anchor {
			n.view.Drag(n.anchor, ev.Pos)
			return EffectView | EffectRender, nil
		}
		return EffectRender, nil

	case Scroll:
		if ev.Notches == 0 {
			return 0, nil
		}
		if !n.view.ZoomAt(ev.Pos, math.Pow(ZoomFactor, ev.Notches)) {
			// Already at the radius limit.
			return 0, nil
		}
		return EffectView, nil

	case Resize:
		if err := n.view.SetSize(ev.Width, ev.Height); err != nil {
			return 0, err
		}
		return EffectView | EffectResize, nil
	}

	return 0, nil
}

func checkEvent(ev Event) error {
	var pos mgl64.Vec2
	switch ev := ev.(type) {
	case ButtonPress:
		pos = ev.Pos
	case ButtonRelease:
		pos = ev.Pos
	case PointerMove:
		pos = ev.Pos
	case Scroll:
		if !finite(ev.Notches) {
			return invalid("scroll", "%v notches", ev.Notches)
		}
		pos = ev.Pos
	}

	if !finite(pos[0]) || !finite(pos[1]) {
		return invalid("pointer position", "%v", pos)
	}
	return nil
}
