package shader

import (
	"fmt"
	"strings"
)

// CompileError is returned when a composed program fails to compile or link.
// Log holds the driver's diagnostic output.
type CompileError struct {
	Name string
	Log  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("color function %q failed to compile: %s", e.Name, strings.TrimSpace(e.Log))
}

// UnknownUniformError is returned for a uniform name the current program does not declare.
type UnknownUniformError struct {
	Name string
}

func (e *UnknownUniformError) Error() string {
	return fmt.Sprintf("unknown uniform %q", e.Name)
}

// ResourceLoadError is returned when the iteration kernel cannot be loaded.
type ResourceLoadError struct {
	Path string
	Err  error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}
