// Package errors defines the error taxonomy of the statistics analyzer.
package errors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeUnknown         = "UNKNOWN_ERROR"
	CodeFormatError     = "FORMAT_ERROR"
	CodeLayoutViolation = "LAYOUT_VIOLATION"
	CodeIOError         = "IO_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeConfigError     = "CONFIG_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Common error instances.
var (
	// ErrFormat marks a header or body record that violates the expected
	// shape. The offending pass is aborted, partial results are retained.
	ErrFormat = New(CodeFormatError, "malformed statistics record")

	// ErrLayoutViolation marks a break of the continuity invariant under
	// the fixed layout mode.
	ErrLayoutViolation = New(CodeLayoutViolation, "layout continuity violation")

	// ErrIO marks a file that cannot be opened or read.
	ErrIO = New(CodeIOError, "file access error")

	// ErrNotFound marks a missing resource, e.g. an undeclared type ID.
	ErrNotFound = New(CodeNotFound, "resource not found")

	// ErrConfig marks invalid configuration.
	ErrConfig = New(CodeConfigError, "configuration error")
)

// IsFormatError checks if the error is a format error.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsLayoutViolation checks if the error is a layout continuity violation.
func IsLayoutViolation(err error) bool {
	return errors.Is(err, ErrLayoutViolation)
}

// IsIOError checks if the error is a file access error.
func IsIOError(err error) bool {
	return errors.Is(err, ErrIO)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the human-readable message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
