package export

import "fmt"

// RenderingError is returned for every capture or render failure. No artifact was produced.
type RenderingError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *RenderingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rendering failed during %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("rendering failed during %s: %s", e.Stage, e.Message)
}

func (e *RenderingError) Unwrap() error {
	return e.Cause
}
