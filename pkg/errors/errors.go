package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Manifest errors
	ErrManifestRead  ErrorCode = "MANIFEST_READ"
	ErrPatchMismatch ErrorCode = "PATCH_MISMATCH"
	ErrStaleBackup   ErrorCode = "STALE_BACKUP"
	ErrRestoreFailed ErrorCode = "RESTORE_FAILED"

	// Build tool errors
	ErrBuildTool  ErrorCode = "BUILD_TOOL"
	ErrBuildSpawn ErrorCode = "BUILD_SPAWN"

	// Lock errors
	ErrLockHeld ErrorCode = "LOCK_HELD"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
)

// PackwrapError represents a structured error with code and details
type PackwrapError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PackwrapError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PackwrapError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PackwrapError) Is(target error) bool {
	var targetErr *PackwrapError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PackwrapError with the given code and message
func New(code ErrorCode, message string) *PackwrapError {
	return &PackwrapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PackwrapError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PackwrapError {
	return &PackwrapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PackwrapError
func Wrap(err error, code ErrorCode, message string) *PackwrapError {
	if err == nil {
		return nil
	}
	return &PackwrapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PackwrapError {
	if err == nil {
		return nil
	}
	return &PackwrapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PackwrapError) WithDetail(key string, value interface{}) *PackwrapError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var perr *PackwrapError
	if errors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PackwrapError
func GetErrorCode(err error) ErrorCode {
	var perr *PackwrapError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PackwrapError
func GetErrorDetails(err error) map[string]interface{} {
	var perr *PackwrapError
	if errors.As(err, &perr) {
		return perr.Details
	}
	return nil
}
