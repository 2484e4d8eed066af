package render

import (
	"fmt"
	"strings"

	"github.com/stewi1014/glmandel/gpu"
)

// Mode selects how the pipeline refines the image while the view is still.
type Mode int

const (
	// Progressive draws one jittered sample per frame and blends it into the
	// running average held by the target.
	Progressive Mode = iota
	// Supersampled draws once per change at the full resolution scale and
	// presents a mipmapped, downscaled sprite.
	Supersampled
)

var modeNames = map[Mode]string{
	Progressive:  "progressive",
	Supersampled: "supersampled",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

type strategy interface {
	frame(p *Pipeline, l Layout) error
}

func strategyFor(m Mode) strategy {
	if m == Supersampled {
		return supersampled{}
	}
	return progressive{}
}

type progressive struct{}

func (progressive) frame(p *Pipeline, l Layout) error {
	blend := gpu.BlendReplace
	if p.state.Index > 0 {
		blend = gpu.BlendAlpha
	}

	if err := p.push(l, p.state.Index); err != nil {
		return err
	}
	p.device.Draw(p.target, p.program.Handle(), blend)
	p.device.Present(p.target, l.Screen)

	p.state.Index++
	p.state.Dirty = false
	return nil
}

type supersampled struct{}

func (supersampled) frame(p *Pipeline, l Layout) error {
	if p.state.Dirty {
		if err := p.renderOnce(l); err != nil {
			return err
		}
	}
	p.device.Present(p.target, l.Screen)
	return nil
}
