// Package errors is graphd's typed-error-to-HTTP-response bridge,
// grounded on the teacher's (2lar-b2/backend2) pkg/errors — trimmed to
// the kinds the admin/debug surface and its auth/rate-limit middleware
// actually raise (DESIGN.md).
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden   ErrorType = "FORBIDDEN"
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeTimeout     ErrorType = "TIMEOUT"
	ErrorTypeRateLimit   ErrorType = "RATE_LIMIT"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
)

// AppError represents an application-specific error with an HTTP status
// already attached.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// NewValidationError creates a validation error — a malformed request
// body or query parameter on the admin surface.
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, HTTPStatus: http.StatusBadRequest, StackTrace: captureStackTrace()}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(resource string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: fmt.Sprintf("%s not found", resource), HTTPStatus: http.StatusNotFound, StackTrace: captureStackTrace()}
}

// NewUnauthorizedError creates an unauthorized error, for pkg/auth's JWT
// middleware.
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{Type: ErrorTypeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized, StackTrace: captureStackTrace()}
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return &AppError{Type: ErrorTypeForbidden, Message: message, HTTPStatus: http.StatusForbidden, StackTrace: captureStackTrace()}
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, StackTrace: captureStackTrace()}
}

// NewTimeoutError creates a timeout error, for middleware.Timeout's
// deadline exceeding a request.
func NewTimeoutError(operation string) *AppError {
	return &AppError{Type: ErrorTypeTimeout, Message: fmt.Sprintf("operation '%s' timed out", operation), HTTPStatus: http.StatusRequestTimeout, StackTrace: captureStackTrace()}
}

// NewRateLimitError creates a rate limit error, for pkg/auth's
// RateLimiter.
func NewRateLimitError(limit int, window string) *AppError {
	return &AppError{Type: ErrorTypeRateLimit, Message: fmt.Sprintf("rate limit exceeded: %d requests per %s", limit, window), HTTPStatus: http.StatusTooManyRequests, StackTrace: captureStackTrace()}
}

// NewUnavailableError creates a service unavailable error, for a
// not-yet-constructed cache or arbiter.
func NewUnavailableError(service string) *AppError {
	return &AppError{Type: ErrorTypeUnavailable, Message: fmt.Sprintf("%s is unavailable", service), HTTPStatus: http.StatusServiceUnavailable, StackTrace: captureStackTrace()}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
