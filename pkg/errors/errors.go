// Package errors provides structured error types for the stubber.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the driver, emitter and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input and configuration validation failures
//   - *_NOT_FOUND: Missing modules or files
//   - ATTRIBUTE_ERROR, OUT_OF_MEMORY, LOW_MEMORY: runtime introspection failures
//   - OUTPUT_IO: stub files or folders could not be written
//   - RESTART_REQUIRED: the device must be reset and the run resumed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeModuleNotFound, "no module named %q", name)
//	if errors.Is(err, errors.ErrCodeModuleNotFound) {
//	    // record a skip and continue
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeOutputIO, origErr, "create %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidModule Code = "INVALID_MODULE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeModuleNotFound Code = "MODULE_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Runtime introspection errors
	ErrCodeAttribute   Code = "ATTRIBUTE_ERROR"
	ErrCodeOutOfMemory Code = "OUT_OF_MEMORY"
	ErrCodeLowMemory   Code = "LOW_MEMORY"
	ErrCodeRestart     Code = "RESTART_REQUIRED"

	// Output errors
	ErrCodeOutputIO Code = "OUTPUT_IO"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
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

// Is reports whether err has the given error code anywhere in its chain.
// Unlike [GetCode], an outer error with a different code does not hide an
// inner match, so a RESTART_REQUIRED wrapping an OUT_OF_MEMORY matches both.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// RestartError is returned once the memory guard has reset the runtime.
// The in-flight module is not recorded so that a resumed run retries it.
type RestartError struct {
	Stage string // Guarded step that exhausted the heap
	Cause error
}

// Error implements the error interface.
func (e *RestartError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("restart required during %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("restart required during %s", e.Stage)
}

// Unwrap returns the cause that triggered the restart.
func (e *RestartError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *RestartError) Code() Code {
	return ErrCodeRestart
}

// IsRestart reports whether err carries a *RestartError.
func IsRestart(err error) bool {
	var re *RestartError
	return errors.As(err, &re)
}
