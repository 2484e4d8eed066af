// Package config loads glmandel.toml.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/stewi1014/glmandel/engine"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/render"
	"github.com/stewi1014/glmandel/viewport"
)

// FileName is the config file looked for in the working directory when no path is given.
const FileName = "glmandel.toml"

type Config struct {
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	MaxIters        int     `toml:"max_iters"`
	ResolutionScale float32 `toml:"resolution_scale"`
	Mode            string  `toml:"mode"`
	VSync           bool    `toml:"vsync"`

	// Kernel is a path to an iteration kernel. Empty uses the built-in one.
	// Relative paths are resolved against the config file's directory.
	Kernel        string     `toml:"kernel,omitempty"`
	ColorFunction string     `toml:"color_function"`
	Center        [2]float64 `toml:"center"`
	Radius        float64    `toml:"radius"`

	Screenshot Screenshot `toml:"screenshot"`
	Bookmarks  []Bookmark `toml:"bookmark"`
}

type Screenshot struct {
	Dir      string  `toml:"dir"`
	Format   string  `toml:"format"`
	Scale    float32 `toml:"scale"`
	MaxIters int     `toml:"max_iters"`
}

// PathAt names a screenshot taken at t.
func (s Screenshot) PathAt(t time.Time) string {
	name := "glmandel-" + t.Format("20060102-150405.000") + "." + strings.TrimPrefix(s.Format, ".")
	return filepath.Join(s.Dir, name)
}

// Bookmark is a named place worth returning to.
type Bookmark struct {
	Name   string     `toml:"name"`
	Center [2]float64 `toml:"center"`
	Radius float64    `toml:"radius"`
}

func (b Bookmark) CenterVec() mgl64.Vec2 {
	return mgl64.Vec2(b.Center)
}

func Default() *Config {
	return &Config{
		Width:           900,
		Height:          900,
		MaxIters:        1500,
		ResolutionScale: 1,
		Mode:            render.Progressive.String(),
		VSync:           true,
		ColorFunction:   programs.Palette.Name,
		Center:          [2]float64{-0.5, 0},
		Radius:          1.1,
		Screenshot: Screenshot{
			Dir:      ".",
			Format:   "png",
			Scale:    4,
			MaxIters: 5000,
		},
		Bookmarks: []Bookmark{
			{Name: "seahorse tail", Center: [2]float64{0.270925, 0.004725}, Radius: 0.0001},
			{Name: "seahorse valley", Center: [2]float64{-0.745428, 0.113009}, Radius: 3.0e-5},
			{Name: "mini brot", Center: [2]float64{-1.25223118015508028122, 0.03755885941558481655}, Radius: 3.6e-8},
			{Name: "mini brot spiral", Center: [2]float64{-1.2519620871808931906, 0.037393550920969360896}, Radius: 1.45e-08},
			{Name: "double spiral", Center: [2]float64{-0.747747, 0.124517}, Radius: 1.0e-4},
			{Name: "antenna", Center: [2]float64{-1.25066, 0.02012}, Radius: 1.7e-4},
			{Name: "valley wide", Center: [2]float64{-0.748, 0.1}, Radius: 0.0014},
			{Name: "upper bulb", Center: [2]float64{-0.514814, 0.6111110539}, Radius: 0.1},
			{Name: "deep spiral", Center: [2]float64{-0.74656412896776469523, 0.098865810107694587772}, Radius: 8.2212188006580699331e-12},
		},
	}
}

// Load reads path over the defaults. Keys the file sets that Config does not know are an error.
func Load(path string) (*Config, error) {
	c := Default()

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parsing %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if c.Kernel != "" && !filepath.IsAbs(c.Kernel) {
		c.Kernel = filepath.Join(filepath.Dir(path), c.Kernel)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadDefault loads FileName from the working directory if it exists, and the defaults otherwise.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat(FileName); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(FileName)
}

func (c *Config) Validate() error {
	var errs []error
	invalid := func(name string, value any) {
		errs = append(errs, &viewport.InvalidRangeError{Name: name, Value: fmt.Sprint(value)})
	}

	if c.Width <= 0 || c.Height <= 0 {
		invalid("window size", fmt.Sprintf("%dx%d", c.Width, c.Height))
	}
	if c.MaxIters <= 0 {
		invalid("max_iters", c.MaxIters)
	}
	if !positive(float64(c.ResolutionScale)) {
		invalid("resolution_scale", c.ResolutionScale)
	}
	if _, err := render.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, ok := programs.Lookup(c.ColorFunction); !ok {
		errs = append(errs, fmt.Errorf("unknown color function %q", c.ColorFunction))
	}
	if !finite(c.Center[0]) || !finite(c.Center[1]) {
		invalid("center", c.Center)
	}
	if !positive(c.Radius) {
		invalid("radius", c.Radius)
	}

	if !positive(float64(c.Screenshot.Scale)) {
		invalid("screenshot.scale", c.Screenshot.Scale)
	}
	if c.Screenshot.MaxIters <= 0 {
		invalid("screenshot.max_iters", c.Screenshot.MaxIters)
	}
	if !supportedFormat(c.Screenshot.Format) {
		errs = append(errs, fmt.Errorf("screenshot.format: %w: %q", engine.ErrUnsupportedFormat, c.Screenshot.Format))
	}

	for i, b := range c.Bookmarks {
		if !finite(b.Center[0]) || !finite(b.Center[1]) || !positive(b.Radius) {
			invalid(fmt.Sprintf("bookmark %d (%s)", i+1, b.Name), fmt.Sprintf("%v r=%v", b.Center, b.Radius))
		}
	}

	return errors.Join(errs...)
}

// ModeValue returns Mode parsed. It is only meaningful on a validated Config.
func (c *Config) ModeValue() render.Mode {
	m, _ := render.ParseMode(c.Mode)
	return m
}

func (c *Config) ColorFunctionValue() *programs.ColorFunction {
	cf, ok := programs.Lookup(c.ColorFunction)
	if !ok {
		return programs.Palette
	}
	return cf
}

func (c *Config) CenterVec() mgl64.Vec2 {
	return mgl64.Vec2(c.Center)
}

func supportedFormat(format string) bool {
	ext := "." + strings.ToLower(strings.TrimPrefix(format, "."))
	for _, f := range engine.Formats() {
		if f == ext {
			return true
		}
	}
	return false
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
