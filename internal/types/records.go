// Package types provides type definitions for structured data used throughout the resume builder.
package types

import (
	"time"

	"github.com/google/uuid"
)

// ResumeRecord is a stored resume as exposed by the REST API.
type ResumeRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   *Document `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResumeSummary is the lightweight listing view of a stored resume.
type ResumeSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	FullName  string    `json:"full_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateResumeRequest creates a stored resume. Content is parsed with the resume parser.
type CreateResumeRequest struct {
	Title   string    `json:"title" validate:"required,max=200"`
	Content *Document `json:"content" validate:"required"`
}

// UpdateResumeRequest is a partial update; nil fields are left unchanged.
type UpdateResumeRequest struct {
	Title   *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content *Document `json:"content,omitempty"`
}

// ExportRequest carries a snapshot of already-rendered preview markup.
type ExportRequest struct {
	HTML     string `json:"html" validate:"required"`
	FullName string `json:"full_name"`
}

// Validate validates the CreateResumeRequest.
func (r *CreateResumeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the UpdateResumeRequest.
func (r *UpdateResumeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ExportRequest.
func (r *ExportRequest) Validate() error {
	return validate.Struct(r)
}
