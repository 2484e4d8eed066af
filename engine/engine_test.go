package engine

import (
	"errors"
	"image"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "golang.org/x/image/bmp"

	"github.com/stewi1014/glmandel/gpu"
	"github.com/stewi1014/glmandel/gpu/gputest"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/render"
	"github.com/stewi1014/glmandel/shader"
	"github.com/stewi1014/glmandel/viewport"
)

func newEngine(t *testing.T, opts ...Option) (*Engine, *gputest.Device) {
	t.Helper()
	dev := gputest.New()

	opts = append([]Option{WithSize(900, 900), WithMaxIters(1500)}, opts...)
	e, err := New(dev, shader.DefaultKernel, programs.Palette, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)

	require.NoError(t, e.SetCenter(mgl64.Vec2{-0.5, 0}))
	require.NoError(t, e.SetRadius(1.1))
	return e, dev
}

func imageSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestInitialScenario(t *testing.T) {
	e, _ := newEngine(t)

	x, y := e.Range()
	assert.InDelta(t, -1.6, x[0], 1e-15)
	assert.InDelta(t, 0.6, x[1], 1e-15)
	assert.InDelta(t, -1.1, y[0], 1e-15)
	assert.InDelta(t, 1.1, y[1], 1e-15)

	assert.Equal(t, mgl64.Vec2{-0.5, 0}, e.PixelToPlane(mgl64.Vec2{450, 450}))
	assert.Equal(t, mgl64.Vec2{-0.5, 0}, e.Center())
	assert.Equal(t, 1.1, e.Radius())
}

func TestNewDefaults(t *testing.T) {
	dev := gputest.New()
	e, err := New(dev, shader.DefaultKernel, programs.HSV)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, DefaultMaxIters, e.MaxIters())
	assert.Equal(t, float32(DefaultScale), e.ResolutionScale())
	assert.Equal(t, render.Progressive, e.Mode())
	assert.Same(t, programs.HSV, e.ColorFunction())

	w, h := e.Size()
	assert.Equal(t, viewport.DefaultWidth, w)
	assert.Equal(t, viewport.DefaultHeight, h)
	require.Len(t, dev.LiveTargets(), 1)
}

func TestNewRejectsBadOptions(t *testing.T) {
	var rangeErr *viewport.InvalidRangeError

	_, err := New(gputest.New(), shader.DefaultKernel, programs.Palette, WithResolutionScale(0))
	assert.ErrorAs(t, err, &rangeErr)

	_, err = New(gputest.New(), shader.DefaultKernel, programs.Palette, WithMaxIters(-1))
	assert.ErrorAs(t, err, &rangeErr)

	_, err = New(gputest.New(), shader.DefaultKernel, programs.Palette, WithSize(0, 10))
	assert.ErrorAs(t, err, &rangeErr)

	var loadErr *shader.ResourceLoadError
	_, err = New(gputest.New(), "", programs.Palette)
	assert.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, shader.ErrEmptyKernel)

	_, err = New(gputest.New(), shader.DefaultKernel, nil)
	assert.ErrorIs(t, err, ErrNoColorFunction)
}

func TestZoomKeepsCursorPoint(t *testing.T) {
	e, _ := newEngine(t)
	cursor := mgl64.Vec2{700, 120}
	before := e.PixelToPlane(cursor)

	require.NoError(t, e.HandleEvent(viewport.Scroll{Pos: cursor, Notches: 3}))

	after := e.PixelToPlane(cursor)
	assert.InDelta(t, before[0], after[0], 1e-12)
	assert.InDelta(t, before[1], after[1], 1e-12)
	assert.Less(t, e.Radius(), 1.1)
}

func TestPanFollowsPointer(t *testing.T) {
	e, _ := newEngine(t)
	anchor := mgl64.Vec2{300, 300}
	point := e.PixelToPlane(anchor)

	require.NoError(t, e.HandleEvent(viewport.ButtonPress{Button: viewport.ButtonPrimary, Pos: anchor}))
	require.NoError(t, e.HandleEvent(viewport.PointerMove{Pos: mgl64.Vec2{340, 250}}))
	require.NoError(t, e.HandleEvent(viewport.PointerMove{Pos: mgl64.Vec2{380, 270}}))
	require.NoError(t, e.HandleEvent(viewport.ButtonRelease{Button: viewport.ButtonPrimary, Pos: mgl64.Vec2{380, 270}}))

	got := e.PlaneToPixel(point)
	assert.InDelta(t, 380, got[0], 1e-9)
	assert.InDelta(t, 270, got[1], 1e-9)
}

func TestHandledPressIgnored(t *testing.T) {
	e, _ := newEngine(t)

	require.NoError(t, e.HandleEvent(viewport.ButtonPress{Button: viewport.ButtonPrimary, Pos: mgl64.Vec2{10, 10}, Handled: true}))
	require.NoError(t, e.HandleEvent(viewport.PointerMove{Pos: mgl64.Vec2{200, 200}}))

	assert.Equal(t, mgl64.Vec2{-0.5, 0}, e.Center())
}

func TestMutationsResetAccumulation(t *testing.T) {
	mutations := map[string]func(*Engine) error{
		"center": func(e *Engine) error { return e.SetCenter(mgl64.Vec2{0.1, 0.2}) },
		"radius": func(e *Engine) error { return e.SetRadius(0.5) },
		"zoom": func(e *Engine) error {
			return e.HandleEvent(viewport.Scroll{Pos: mgl64.Vec2{100, 100}, Notches: -1})
		},
		"pan": func(e *Engine) error {
			return errors.Join(
				e.HandleEvent(viewport.ButtonPress{Button: viewport.ButtonPrimary, Pos: mgl64.Vec2{1, 1}}),
				e.HandleEvent(viewport.PointerMove{Pos: mgl64.Vec2{5, 9}}),
			)
		},
		"release":  func(e *Engine) error { return e.HandleEvent(viewport.ButtonRelease{Button: viewport.ButtonPrimary}) },
		"resize":   func(e *Engine) error { return e.SetSize(640, 480) },
		"scale":    func(e *Engine) error { return e.SetResolutionScale(1.5) },
		"maxIters": func(e *Engine) error { return e.SetMaxIters(300) },
		"colorFunction": func(e *Engine) error {
			return e.SetColorFunction(programs.Waves)
		},
		"uniform": func(e *Engine) error { return e.SetUniform("colorMult", 17) },
		"mode":    func(e *Engine) error { e.SetMode(render.Supersampled); return nil },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			e, dev := newEngine(t)
			if name == "release" {
				require.NoError(t, e.HandleEvent(viewport.ButtonPress{Button: viewport.ButtonPrimary}))
			}

			for range 3 {
				require.NoError(t, e.Frame())
			}
			require.Equal(t, uint32(3), e.FrameIndex())

			require.NoError(t, mutate(e))
			assert.Equal(t, uint32(0), e.FrameIndex())

			require.NoError(t, e.Frame())
			last := dev.LastDraw()
			assert.Equal(t, gpu.BlendReplace, last.Blend)
			assert.Equal(t, int32(0), last.Uniforms[shader.UniformFrame])
		})
	}
}

func TestUniformPersistsAcrossSwap(t *testing.T) {
	e, dev := newEngine(t)

	require.NoError(t, e.SetUniform("colorMult", 42))
	require.NoError(t, e.SetColorFunction(programs.HSV))

	v, err := e.Uniform("colorMult")
	require.NoError(t, err)
	assert.Equal(t, float32(1000), v)

	require.NoError(t, e.SetColorFunction(programs.Palette))
	v, err = e.Uniform("colorMult")
	require.NoError(t, err)
	assert.Equal(t, float32(42), v)

	require.NoError(t, e.Frame())
	assert.Equal(t, float32(42), dev.LastDraw().Uniforms["colorMult"])
}

func TestSwapReleasesOldProgram(t *testing.T) {
	e, dev := newEngine(t)
	first := dev.Programs[0]

	require.NoError(t, e.SetColorFunction(programs.Exp))
	assert.True(t, first.Deleted)

	require.NoError(t, e.Frame())
	assert.NotSame(t, first, dev.LastDraw().Program)
}

func TestCompileFailureKeepsProgram(t *testing.T) {
	e, dev := newEngine(t)
	require.NoError(t, e.SetUniform("colorMult", 99))
	require.NoError(t, e.Frame())
	good := dev.LastDraw().Program

	broken := programs.NewColorFunction("broken", "vec3 get_colour(int i) { return vec3(0); }")
	err := e.SetColorFunction(broken)

	var compileErr *shader.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.NotEmpty(t, compileErr.Log)
	assert.Equal(t, "broken", compileErr.Name)

	assert.Same(t, programs.Palette, e.ColorFunction())
	assert.False(t, good.Deleted)
	assert.Equal(t, uint32(1), e.FrameIndex())

	require.NoError(t, e.Frame())
	assert.Same(t, good, dev.LastDraw().Program)
	assert.Equal(t, float32(99), dev.LastDraw().Uniforms["colorMult"])
}

func TestUnknownUniform(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Frame())

	var unknown *shader.UnknownUniformError
	require.ErrorAs(t, e.SetUniform("colourMult", 1), &unknown)
	assert.Equal(t, "colourMult", unknown.Name)

	// Kernel inputs are declared by the program but are not the color function's to set.
	assert.ErrorAs(t, e.SetUniform(shader.UniformFrame, 1), &unknown)

	_, err := e.Uniform("nope")
	assert.ErrorAs(t, err, &unknown)

	assert.Equal(t, uint32(1), e.FrameIndex())
}

func TestInvalidSettingsRejected(t *testing.T) {
	e, dev := newEngine(t)
	targets := len(dev.Targets)
	var rangeErr *viewport.InvalidRangeError

	assert.ErrorAs(t, e.SetResolutionScale(0), &rangeErr)
	assert.ErrorAs(t, e.SetResolutionScale(-2), &rangeErr)
	assert.ErrorAs(t, e.SetMaxIters(0), &rangeErr)
	assert.ErrorAs(t, e.SetRadius(0), &rangeErr)
	assert.ErrorAs(t, e.SetSize(0, 900), &rangeErr)

	assert.Equal(t, float32(1), e.ResolutionScale())
	assert.Equal(t, 1500, e.MaxIters())
	assert.Equal(t, 1.1, e.Radius())
	w, h := e.Size()
	assert.Equal(t, []int{900, 900}, []int{w, h})
	assert.Len(t, dev.Targets, targets)
}

func TestFailedResizeKeepsState(t *testing.T) {
	e, dev := newEngine(t)
	old := dev.LiveTargets()

	dev.FailTargets = 1
	err := e.SetSize(1280, 720)
	require.ErrorIs(t, err, gputest.ErrTargetUnavailable)

	w, h := e.Size()
	assert.Equal(t, []int{900, 900}, []int{w, h})
	assert.Equal(t, old, dev.LiveTargets())
	require.NoError(t, e.Frame())
}

func TestResolutionScale(t *testing.T) {
	e, dev := newEngine(t)

	require.NoError(t, e.SetResolutionScale(0.5))
	live := dev.LiveTargets()
	require.Len(t, live, 1)
	assert.Equal(t, 450, live[0].Width)

	require.NoError(t, e.Frame())
	assert.Equal(t, [2]uint32{450, 450}, dev.LastDraw().Uniforms[shader.UniformSize])
}

func TestScreenshotDoesNotDisturbDisplay(t *testing.T) {
	e, dev := newEngine(t)
	require.NoError(t, e.Frame())
	require.NoError(t, e.Frame())

	path := filepath.Join(t.TempDir(), "shot.bmp")
	require.NoError(t, e.Screenshot(path, 4, 5000))

	w, h := imageSize(t, path)
	assert.Equal(t, 3600, w)
	assert.Equal(t, 3600, h)

	shot := dev.Draws[len(dev.Draws)-1]
	assert.Equal(t, int32(5000), shot.Uniforms[shader.UniformMaxIters])
	assert.Equal(t, 3600, shot.Target.Width)

	assert.Equal(t, float32(1), e.ResolutionScale())
	assert.Equal(t, 1500, e.MaxIters())
	assert.Equal(t, uint32(0), e.FrameIndex())

	live := dev.LiveTargets()
	require.Len(t, live, 1)
	assert.Equal(t, 900, live[0].Width)

	require.NoError(t, e.Frame())
	assert.Equal(t, int32(1500), dev.LastDraw().Uniforms[shader.UniformMaxIters])
}

func TestScreenshotRoundsDimensions(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.SetSize(101, 33))

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, e.Screenshot(path, 1.5, 100))

	w, h := imageSize(t, path)
	assert.Equal(t, 152, w)
	assert.Equal(t, 50, h)
}

func TestSaveScreenshotUsesCurrentSettings(t *testing.T) {
	e, dev := newEngine(t)
	require.NoError(t, e.SetResolutionScale(0.5))

	path := filepath.Join(t.TempDir(), "shot.PNG")
	require.NoError(t, e.SaveScreenshot(path))

	w, _ := imageSize(t, path)
	assert.Equal(t, 450, w)
	assert.Equal(t, int32(1500), dev.LastDraw().Uniforms[shader.UniformMaxIters])
}

func TestScreenshotUnsupportedFormat(t *testing.T) {
	e, dev := newEngine(t)
	targets := len(dev.Targets)

	path := filepath.Join(t.TempDir(), "shot.webp")
	err := e.Screenshot(path, 2, 100)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.NoFileExists(t, path)
	assert.Len(t, dev.Targets, targets)
}

func TestScreenshotFailureRestores(t *testing.T) {
	t.Run("target", func(t *testing.T) {
		e, dev := newEngine(t)
		dev.FailTargets = 1

		path := filepath.Join(t.TempDir(), "shot.png")
		require.ErrorIs(t, e.Screenshot(path, 4, 5000), gputest.ErrTargetUnavailable)

		assert.NoFileExists(t, path)
		assert.Equal(t, float32(1), e.ResolutionScale())
		assert.Equal(t, 1500, e.MaxIters())
		require.NoError(t, e.Frame())
	})

	t.Run("write", func(t *testing.T) {
		e, dev := newEngine(t)

		path := filepath.Join(t.TempDir(), "missing", "shot.png")
		require.Error(t, e.Screenshot(path, 2, 5000))

		assert.Equal(t, float32(1), e.ResolutionScale())
		assert.Equal(t, 1500, e.MaxIters())
		live := dev.LiveTargets()
		require.Len(t, live, 1)
		assert.Equal(t, 900, live[0].Width)
	})
}

func TestRenderSwatch(t *testing.T) {
	e, dev := newEngine(t)
	require.NoError(t, e.SetUniform("colorMult", 12))

	img, err := e.RenderSwatch(programs.Palette, 64, 8)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 8), img.Bounds())

	swatch := dev.LastDraw()
	assert.Equal(t, float32(12), swatch.Uniforms["colorMult"])
	assert.True(t, swatch.Program.Deleted)
	assert.Len(t, dev.LiveTargets(), 1)

	_, err = e.RenderSwatch(programs.Palette, 0, 8)
	var rangeErr *viewport.InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestScreenshotKeepsDisplayTarget(t *testing.T) {
	e, dev := newEngine(t)
	require.NoError(t, e.Frame())
	display := dev.LiveTargets()[0]
	allocated := len(dev.Targets)

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, e.Screenshot(path, 2, 5000))

	// Only the export target is allocated, and the display target comes back untouched.
	assert.Len(t, dev.Targets, allocated+1)
	assert.True(t, dev.Targets[allocated].Deleted)
	assert.Equal(t, []*gputest.Target{display}, dev.LiveTargets())
	assert.Equal(t, float32(1), e.ResolutionScale())

	require.NoError(t, e.Frame())
	assert.Same(t, display, dev.LastDraw().Target)
	assert.Equal(t, gpu.BlendReplace, dev.LastDraw().Blend)
}

// budgetDevice refuses targets once its allocation budget is spent.
type budgetDevice struct {
	*gputest.Device
	budget int
}

func (d *budgetDevice) NewTarget(width, height int) (gpu.Target, error) {
	if d.budget <= 0 {
		return nil, gputest.ErrTargetUnavailable
	}
	d.budget--
	return d.Device.NewTarget(width, height)
}

func TestScreenshotRestoreNeedsNoAllocation(t *testing.T) {
	dev := &budgetDevice{Device: gputest.New(), budget: 1}
	e, err := New(dev, shader.DefaultKernel, programs.Palette, WithSize(900, 900), WithMaxIters(1500))
	require.NoError(t, err)
	defer e.Close()
	display := dev.LiveTargets()[0]

	// Enough for the export target and nothing more.
	dev.budget = 1
	path := filepath.Join(t.TempDir(), "shot.bmp")
	require.NoError(t, e.Screenshot(path, 4, 5000))

	w, h := imageSize(t, path)
	assert.Equal(t, []int{3600, 3600}, []int{w, h})
	assert.Equal(t, float32(1), e.ResolutionScale())
	assert.Equal(t, 1500, e.MaxIters())
	assert.Equal(t, []*gputest.Target{display}, dev.LiveTargets())
	require.NoError(t, e.Frame())
	assert.Same(t, display, dev.LastDraw().Target)
}

func TestNonFiniteEventsRejected(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Frame())
	require.NoError(t, e.Frame())

	var rangeErr *viewport.InvalidRangeError
	err := e.HandleEvent(viewport.Scroll{Pos: mgl64.Vec2{450, 450}, Notches: math.NaN()})
	require.ErrorAs(t, err, &rangeErr)
	err = e.HandleEvent(viewport.Scroll{Pos: mgl64.Vec2{math.NaN(), 450}, Notches: 1})
	require.ErrorAs(t, err, &rangeErr)

	assert.Equal(t, 1.1, e.Radius())
	assert.Equal(t, mgl64.Vec2{-0.5, 0}, e.Center())
	assert.Equal(t, uint32(2), e.FrameIndex())
}

func TestZoomOutAtLimitKeepsAccumulation(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.SetRadius(viewport.MaxRadius))
	require.NoError(t, e.Frame())
	require.NoError(t, e.Frame())

	require.NoError(t, e.HandleEvent(viewport.Scroll{Pos: mgl64.Vec2{200, 300}, Notches: -2}))

	assert.Equal(t, float64(viewport.MaxRadius), e.Radius())
	assert.Equal(t, uint32(2), e.FrameIndex())
}

func TestRenderSwatchNilColorFunction(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.RenderSwatch(nil, 64, 8)
	assert.ErrorIs(t, err, ErrNoColorFunction)
}
