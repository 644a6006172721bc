package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types for the application
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrBadRequest is returned when the request is malformed
	ErrBadRequest = errors.New("bad request")

	// ErrValidation is returned when validation fails
	ErrValidation = errors.New("validation error")

	// ErrInternal is returned for internal server errors
	ErrInternal = errors.New("internal server error")

	// ErrConflict is returned when there's a conflict
	ErrConflict = errors.New("conflict")

	// ErrServiceUnavailable is returned when a dependent service is unavailable
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Scheduler-specific errors
var (
	// ErrEventNotFound is returned when an event is not found for the user
	ErrEventNotFound = errors.New("event not found")

	// ErrAIUnavailable is returned when every completion provider has failed
	ErrAIUnavailable = errors.New("AI services unavailable")

	// ErrUnparsable is returned when a provider response contains no
	// recoverable JSON even after repair and regex fallback
	ErrUnparsable = errors.New("could not parse AI response")

	// ErrProposalNotFound is returned when a pending conflict proposal has
	// expired or never existed
	ErrProposalNotFound = errors.New("proposal not found or expired")
)

// AppError represents an application error with additional context
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(err error, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    fmt.Sprintf("%s: %v", message, err),
		StatusCode: http.StatusInternalServerError,
	}
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// ValidationError creates a validation error with field details
func ValidationError(message string, fields map[string]string) *AppError {
	details := make(map[string]interface{})
	for k, v := range fields {
		details[k] = v
	}
	return &AppError{
		Err:        ErrValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// Internal creates an internal server error
func Internal(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return &AppError{
		Err:        ErrInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// As re-exports errors.As so callers don't need both packages
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is re-exports errors.Is so callers don't need both packages
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsAppError checks if err is an AppError and extracts it
func IsAppError(err error, target **AppError) bool {
	return errors.As(err, target)
}

// HTTPStatusCode returns the appropriate HTTP status code for an error
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEventNotFound), errors.Is(err, ErrProposalNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrValidation), errors.Is(err, ErrUnparsable):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrAIUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
