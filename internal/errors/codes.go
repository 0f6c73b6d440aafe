package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error type for search and embedding operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates the requested record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeEmptyInput indicates there was no text to embed.
	ErrCodeEmptyInput ErrorCode = "EMPTY_INPUT"
	// ErrCodeIndexUnavailable indicates the vector similarity index is missing or inactive.
	ErrCodeIndexUnavailable ErrorCode = "INDEX_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates the database connection could not be established.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeModelUnavailable indicates the embedding model service is not available.
	ErrCodeModelUnavailable ErrorCode = "MODEL_UNAVAILABLE"
	// ErrCodeMissingField indicates a record lacks the field needed for embedding.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// ServiceError represents a structured error with a stable code.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// CodeOf extracts the error code from err. It returns an empty code when err
// does not carry a ServiceError anywhere in its chain.
func CodeOf(err error) ErrorCode {
	var serviceErr *ServiceError
	if stderrors.As(err, &serviceErr) {
		return serviceErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeInvalidArgument, Message: msg}
}

// InvalidArgumentf creates an invalid argument error with a formatted message.
func InvalidArgumentf(format string, args ...any) *ServiceError {
	return &ServiceError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeNotFound, Message: msg}
}

// EmptyInput creates an empty input error.
func EmptyInput(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeEmptyInput, Message: msg}
}

// IndexUnavailable creates an index unavailable error.
func IndexUnavailable(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeIndexUnavailable, Message: msg, Cause: cause}
}

// ConnectionFailed creates a connection failed error.
func ConnectionFailed(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeConnectionFailed, Message: msg, Cause: cause}
}

// ModelUnavailable creates a model unavailable error.
func ModelUnavailable(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeModelUnavailable, Message: msg, Cause: cause}
}

// MissingField creates a missing field error.
func MissingField(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeMissingField, Message: msg}
}
