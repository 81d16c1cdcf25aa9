package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrAccessDenied   = errors.New("access denied")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrUnauthorized   = errors.New("unauthorized")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Field + " is required"
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// Required builds the error for an absent mandatory field.
func Required(field string) *ValidationError {
	return &ValidationError{Field: field}
}

// Invalid builds the error for a present but malformed field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AppError carries an HTTP status alongside a user-facing message.
type AppError struct {
	Message string
	Code    int
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewUpstreamError builds a 502 for a failed call to an external service.
func NewUpstreamError(msg string, err error) *AppError {
	return &AppError{Message: msg, Code: http.StatusBadGateway, Err: err}
}

// StatusCode maps err to the HTTP status the API returns for it.
func StatusCode(err error) int {
	var appErr *AppError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &appErr):
		return appErr.Code
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
