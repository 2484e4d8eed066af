package engine

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

type encoder func(io.Writer, image.Image) error

var encoders = map[string]encoder{
	".png":  png.Encode,
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".gif": func(w io.Writer, img image.Image) error {
		return gif.Encode(w, img, nil)
	},
	".bmp":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// Formats lists the file extensions Screenshot understands.
func Formats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"}
}

func encoderFor(path string) (encoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	enc, ok := encoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return enc, nil
}

// SaveScreenshot writes the view to path at the current scale and iteration count.
func (e *Engine) SaveScreenshot(path string) error {
	return e.Screenshot(path, e.pipeline.Scale(), e.pipeline.MaxIters())
}

// Screenshot renders the view once at scale and maxIters and writes it to path,
// encoded by the file extension. Display settings are restored afterwards
// and the display re-renders from scratch.
func (e *Engine) Screenshot(path string, scale float32, maxIters int) (err error) {
	enc, err := encoderFor(path)
	if err != nil {
		return err
	}
	if err := checkScale(scale); err != nil {
		return err
	}
	if err := checkMaxIters(maxIters); err != nil {
		return err
	}

	img, err := e.capture(scale, maxIters)
	if err != nil {
		return fmt.Errorf("rendering screenshot: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := enc(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	b := img.Bounds()
	e.log.Info("screenshot saved", "path", path, "width", b.Dx(), "height", b.Dy(), "maxIters", maxIters)
	return nil
}

func (e *Engine) capture(scale float32, maxIters int) (*image.RGBA, error) {
	restore, err := e.pipeline.Borrow(scale)
	if err != nil {
		return nil, err
	}
	defer restore()

	oldIters := e.pipeline.MaxIters()
	e.pipeline.SetMaxIters(maxIters)
	defer e.pipeline.SetMaxIters(oldIters)

	if err := e.pipeline.RenderOnce(); err != nil {
		return nil, err
	}

	img, err := e.pipeline.Capture()
	if err != nil {
		return nil, err
	}

	l := e.pipeline.Layout()
	if b := img.Bounds(); b.Dx() != l.Width || b.Dy() != l.Height {
		return nil, fmt.Errorf("captured %dx%d, want %dx%d", b.Dx(), b.Dy(), l.Width, l.Height)
	}
	return img, nil
}
