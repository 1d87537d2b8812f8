// Package rendering projects a resume document into the two-column preview sheet.
package rendering

import "fmt"

// TemplateError is returned when the embedded sheet templates fail to parse or
// execute. Template is empty for parse failures, which cover the whole set.
type TemplateError struct {
	Template string
	Cause    error
}

func (e *TemplateError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("sheet templates: %v", e.Cause)
	}
	return fmt.Sprintf("sheet template %q: %v", e.Template, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError is returned when there is no usable sheet to render.
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return "cannot render sheet: " + e.Reason
}
