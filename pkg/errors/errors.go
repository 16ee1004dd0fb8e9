package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Caller errors
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeBadRequest   ErrorType = "bad_request"
	ErrorTypeNotFound     ErrorType = "not_found"

	// Upstream errors
	ErrorTypeUpstreamProcessing ErrorType = "upstream_processing"
	ErrorTypeUpstreamFailed     ErrorType = "upstream_failed"
	ErrorTypeNetworkTimeout     ErrorType = "network_timeout"
	ErrorTypeByteUploadFailed   ErrorType = "byte_upload_failed"

	// System errors
	ErrorTypeInternal      ErrorType = "internal_error"
	ErrorTypeConfiguration ErrorType = "configuration_error"
)

// AppError represents a custom application error
type AppError struct {
	Type    ErrorType
	Message string
	Status  int
	Err     error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithStatus records the HTTP status associated with the error
func (e *AppError) WithStatus(status int) *AppError {
	e.Status = status
	return e
}

// New creates a new AppError
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    errType,
			Message: message,
			Status:  appErr.Status,
			Err:     appErr,
			Context: appErr.Context,
		}
	}

	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Is checks if the error is of a specific type
func Is(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// StatusOf returns the HTTP status recorded on the error, or the fallback.
func StatusOf(err error, fallback int) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return fallback
}

// Common error constructors

func NewUnauthorizedError(message string) *AppError {
	return New(ErrorTypeUnauthorized, message)
}

func NewBadRequestError(message string) *AppError {
	return New(ErrorTypeBadRequest, message)
}

func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource))
}

func NewUpstreamProcessingError(message string) *AppError {
	return New(ErrorTypeUpstreamProcessing, message)
}

func NewUpstreamFailedError(message string) *AppError {
	return New(ErrorTypeUpstreamFailed, message)
}

func WrapUpstreamFailedError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeUpstreamFailed, message)
}

func NewNetworkTimeoutError(message string) *AppError {
	return New(ErrorTypeNetworkTimeout, message)
}

func NewByteUploadFailedError(message string) *AppError {
	return New(ErrorTypeByteUploadFailed, message)
}

func NewInternalError(message string) *AppError {
	return New(ErrorTypeInternal, message)
}

func WrapInternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeInternal, message)
}

func NewConfigurationError(message string) *AppError {
	return New(ErrorTypeConfiguration, message)
}
