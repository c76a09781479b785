package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeContentInvalid     = "CONTENT_INVALID"
	ErrCodeContentUnavailable = "CONTENT_UNAVAILABLE"
	ErrCodePersistenceFailed  = "PERSISTENCE_FAILED"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "CONTENT_INVALID")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewContentInvalidError reports an activity document that cannot be evaluated.
func NewContentInvalidError(activityID string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeContentInvalid,
		Message: fmt.Sprintf("activity %s is invalid: %s", activityID, reason),
		Status:  http.StatusUnprocessableEntity,
	}
}

// NewContentUnavailableError reports that content could not be loaded.
func NewContentUnavailableError(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeContentUnavailable,
		Message: fmt.Sprintf("failed to load %s", resource),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// NewPersistenceError reports a failed progress write. The in-memory session
// remains usable; the caller should warn that progress may not be saved.
func NewPersistenceError(what string, err error) *AppError {
	return &AppError{
		Code:    ErrCodePersistenceFailed,
		Message: fmt.Sprintf("failed to save %s", what),
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError extracts an AppError from err, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}
