// Package errors provides structured error types for stacktree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "dimension %q listed twice", id)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Attach a code to a library error
//	err := errors.Classify(tree.Aggregate(t, dims, measure))
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidOrientation Code = "INVALID_ORIENTATION"
	ErrCodeInvalidOrder       Code = "INVALID_ORDER"
	ErrCodeInvalidMeasure     Code = "INVALID_MEASURE"
	ErrCodeInvalidTable       Code = "INVALID_TABLE"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"
	ErrCodeUnknownColumn      Code = "UNKNOWN_COLUMN"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeDatasetNotFound Code = "DATASET_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Backend errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeUnavailable Code = "UNAVAILABLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var httpStatus = map[Code]int{
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidFormat:      http.StatusBadRequest,
	ErrCodeInvalidOrientation: http.StatusBadRequest,
	ErrCodeInvalidOrder:       http.StatusBadRequest,
	ErrCodeInvalidMeasure:     http.StatusUnprocessableEntity,
	ErrCodeInvalidTable:       http.StatusUnprocessableEntity,
	ErrCodeInvalidConfig:      http.StatusBadRequest,
	ErrCodeUnknownColumn:      http.StatusUnprocessableEntity,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeDatasetNotFound:    http.StatusNotFound,
	ErrCodeFileNotFound:       http.StatusNotFound,
	ErrCodeNetwork:            http.StatusBadGateway,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeUnavailable:        http.StatusServiceUnavailable,
	ErrCodeUnsupported:        http.StatusNotImplemented,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps the code of err to an HTTP status. Errors without a
// code map to 500.
func HTTPStatus(err error) int {
	if s, ok := httpStatus[GetCode(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
