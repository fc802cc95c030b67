// Package errors defines structured error types for the CureLink backend.
// Errors carry a machine-readable code and an HTTP status so interface
// layers can map them without inspecting messages.
package errors

import (
	"fmt"
	"net/http"
)

// Error codes used across the service.
const (
	ErrCodeInternal         = "internal_error"
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeQuotaExceeded    = "quota_exceeded"
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodeUpstreamFailure  = "upstream_failure"
)

// AppError is the structured application error.
type AppError struct {
	Code        string
	HTTPStatus  int
	Message     string
	Description string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error and returns a copy.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.cause = cause
	return &clone
}

// WithMetadata attaches context metadata and returns a copy.
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	clone := *e
	clone.metadata = make(map[string]interface{}, len(e.metadata)+1)
	for k, v := range e.metadata {
		clone.metadata[k] = v
	}
	clone.metadata[key] = value
	return &clone
}

// Metadata returns attached metadata, if any.
func (e *AppError) Metadata() map[string]interface{} {
	return e.metadata
}

// New creates a new AppError with the given code, status, and message.
func New(code string, httpStatus int, message string) *AppError {
	return &AppError{
		Code:       code,
		HTTPStatus: httpStatus,
		Message:    message,
	}
}

// ================================================================================
// Predefined Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error.
func ErrInvalidRequest(message string) *AppError {
	return New(ErrCodeInvalidRequest, http.StatusBadRequest, message)
}

// ErrNotFound creates a not_found error.
func ErrNotFound(message string) *AppError {
	return New(ErrCodeNotFound, http.StatusNotFound, message)
}

// ErrInternal creates an internal_error.
func ErrInternal(message string) *AppError {
	return New(ErrCodeInternal, http.StatusInternalServerError, message)
}

// ErrStoreUnavailable creates a store_unavailable error. Callers in the
// quota subsystem recover it locally; it must never surface as a 5xx.
func ErrStoreUnavailable(message string) *AppError {
	return New(ErrCodeStoreUnavailable, http.StatusServiceUnavailable, message)
}

// ErrQuotaExceeded creates a quota_exceeded error.
func ErrQuotaExceeded(message string) *AppError {
	return New(ErrCodeQuotaExceeded, http.StatusTooManyRequests, message)
}

// ErrUpstreamFailure creates an upstream_failure error for scholarly
// provider errors.
func ErrUpstreamFailure(message string) *AppError {
	return New(ErrCodeUpstreamFailure, http.StatusBadGateway, message)
}

// IsCode reports whether err is an *AppError with the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
