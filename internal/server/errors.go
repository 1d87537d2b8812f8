// Package server provides the HTTP REST API for the resume builder.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/improve"
	"github.com/jonathan/resume-builder/internal/parsing"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrResumeNotFound indicates the resume does not exist or belongs to another user
type ErrResumeNotFound struct {
	ResumeID uuid.UUID
}

func (e *ErrResumeNotFound) Error() string {
	return fmt.Sprintf("resume not found: %s", e.ResumeID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotConfigured indicates an optional capability has no backing service
type ErrNotConfigured struct {
	Feature string
}

func (e *ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Wrapped errors are matched too.
func HTTPStatus(err error) int {
	var (
		emailExists   *ErrEmailAlreadyExists
		badLogin      *ErrInvalidCredentials
		mismatch      *ErrPasswordMismatch
		userMissing   *ErrUserNotFound
		resumeMissing *ErrResumeNotFound
		invalid       *ErrValidation
		notConfigured *ErrNotConfigured
		badDocument   *parsing.ValidationError
		aiFailed      *improve.Error
		renderFailed  *export.RenderingError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badLogin), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userMissing), errors.As(err, &resumeMissing):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &badDocument):
		return http.StatusBadRequest
	case errors.As(err, &notConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &aiFailed):
		return http.StatusBadGateway
	case errors.As(err, &renderFailed):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
