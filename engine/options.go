package engine

import (
	"log/slog"

	"github.com/stewi1014/glmandel/render"
)

const (
	DefaultMaxIters = 2048
	DefaultScale    = 1
)

// Option configures an Engine during creation.
type Option func(*options)

type options struct {
	log      *slog.Logger
	mode     render.Mode
	maxIters int
	scale    float32
	width    int
	height   int
}

func defaultOptions() options {
	return options{
		log:      slog.New(slog.DiscardHandler),
		mode:     render.Progressive,
		maxIters: DefaultMaxIters,
		scale:    DefaultScale,
	}
}

// WithLogger sets the logger. By default the engine logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func WithMode(m render.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

func WithMaxIters(n int) Option {
	return func(o *options) {
		o.maxIters = n
	}
}

func WithResolutionScale(scale float32) Option {
	return func(o *options) {
		o.scale = scale
	}
}

// WithSize sets the initial viewport size in pixels.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}
