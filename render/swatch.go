package render

import (
	"errors"
	"image"

	"github.com/stewi1014/glmandel/gpu"
	"github.com/stewi1014/glmandel/shader"
)

// SwatchRange is the iteration span a swatch shows from left to right.
const SwatchRange = 1000

// Swatch draws prog, a preview composition, into a temporary width by height target.
func Swatch(device gpu.Device, prog *shader.Program, width, height int) (*image.RGBA, error) {
	err := errors.Join(
		prog.SetInt(shader.UniformPreviewRange, SwatchRange),
		prog.SetInt(shader.UniformPreviewSize, int32(width)),
	)
	if err != nil {
		return nil, err
	}

	target, err := device.NewTarget(width, height)
	if err != nil {
		return nil, err
	}
	defer target.Delete()

	device.Draw(target, prog.Handle(), gpu.BlendReplace)
	return device.ReadPixels(target)
}
