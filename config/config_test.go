package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewi1014/glmandel/engine"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/render"
	"github.com/stewi1014/glmandel/viewport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, mgl64.Vec2{-0.5, 0}, c.CenterVec())
	assert.Equal(t, 1.1, c.Radius)
	assert.Equal(t, render.Progressive, c.ModeValue())
	assert.Same(t, programs.Palette, c.ColorFunctionValue())
	assert.Len(t, c.Bookmarks, 9)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
width = 1280
mode = "supersampled"
color_function = "waves"
center = [-0.745428, 0.113009]
radius = 3e-5
kernel = "kernels/julia.frag"

[screenshot]
format = "tiff"

[[bookmark]]
name = "home"
center = [0.0, 0.0]
radius = 2.0
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1280, c.Width)
	assert.Equal(t, 900, c.Height)
	assert.Equal(t, render.Supersampled, c.ModeValue())
	assert.Same(t, programs.Waves, c.ColorFunctionValue())
	assert.Equal(t, mgl64.Vec2{-0.745428, 0.113009}, c.CenterVec())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "kernels", "julia.frag"), c.Kernel)

	assert.Equal(t, "tiff", c.Screenshot.Format)
	assert.Equal(t, float32(4), c.Screenshot.Scale)

	require.Len(t, c.Bookmarks, 1)
	assert.Equal(t, "home", c.Bookmarks[0].Name)
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, "widht = 10\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widht")
}

func TestLoadSyntaxError(t *testing.T) {
	path := writeConfig(t, "width = \n")

	_, err := Load(path)
	assert.ErrorContains(t, err, path)
}

func TestValidateCollectsErrors(t *testing.T) {
	c := Default()
	c.Width = 0
	c.ResolutionScale = -1
	c.Mode = "blurry"
	c.ColorFunction = "sepia"
	c.Screenshot.Format = "webp"
	c.Bookmarks[0].Radius = 0

	err := c.Validate()
	require.Error(t, err)

	var rangeErr *viewport.InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
	assert.ErrorIs(t, err, engine.ErrUnsupportedFormat)
	for _, want := range []string{"window size", "resolution_scale", "blurry", "sepia", "bookmark 1"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestLoadDefaultWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestScreenshotPathAt(t *testing.T) {
	s := Screenshot{Dir: "shots", Format: ".tif"}
	at := time.Date(2024, 3, 9, 14, 5, 7, 250_000_000, time.UTC)

	assert.Equal(t, filepath.Join("shots", "glmandel-20240309-140507.250.tif"), s.PathAt(at))
}

func TestExampleConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "glmandel.example.toml"))
	require.NoError(t, err)

	assert.Equal(t, "screenshots", c.Screenshot.Dir)
	require.Len(t, c.Bookmarks, 2)
	assert.Equal(t, "mini brot", c.Bookmarks[1].Name)
}
