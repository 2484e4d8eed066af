package shader

import (
	_ "embed"
	"errors"
	"os"
	"strings"
)

// DefaultKernel is the escape time kernel shipped with the binary.
//
//go:embed mandelbrot.frag
var DefaultKernel string

var (
	ErrEmptyKernel    = errors.New("kernel is empty")
	ErrKernelGetColor = errors.New("kernel never calls get_color")
)

// LoadKernel reads an iteration kernel from path.
// Any failure is a *ResourceLoadError.
func LoadKernel(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", &ResourceLoadError{Path: path, Err: err}
	}

	kernel := string(b)
	if err := CheckKernel(kernel); err != nil {
		return "", &ResourceLoadError{Path: path, Err: err}
	}
	return kernel, nil
}

// CheckKernel rejects sources that cannot be a kernel.
func CheckKernel(kernel string) error {
	if strings.TrimSpace(kernel) == "" {
		return ErrEmptyKernel
	}
	if !strings.Contains(kernel, "get_color") {
		return ErrKernelGetColor
	}
	return nil
}
