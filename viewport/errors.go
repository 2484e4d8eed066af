package viewport

import "fmt"

// InvalidRangeError reports a value rejected before it could reach the view
// or any GPU resource. The previous state is always retained.
type InvalidRangeError struct {
	Name  string
	Value string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Name, e.Value)
}

func invalid(name string, format string, args ...any) error {
	return &InvalidRangeError{
		Name:  name,
		Value: fmt.Sprintf(format, args...),
	}
}
