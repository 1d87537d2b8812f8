// Package types provides type definitions for structured data used throughout the resume builder.
package types

// ImproveRequest is the body sent to a field-improvement endpoint.
type ImproveRequest struct {
	Text  string `json:"text" validate:"required"`
	Field string `json:"field,omitempty" validate:"omitempty,max=64"`
}

// Feedback is optional structured advice returned alongside improved text.
type Feedback struct {
	Missing   []string `json:"missing"`
	Improve   []string `json:"improve"`
	Suggested string   `json:"suggested,omitempty"`
}

// ImproveResponse carries the replacement text for a field.
type ImproveResponse struct {
	Text     string    `json:"text"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// ErrorResponse is the JSON body returned by endpoints on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
