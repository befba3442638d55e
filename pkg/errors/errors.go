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
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Manifest errors
	ErrManifestLoad    ErrorCode = "MANIFEST_LOAD"
	ErrManifestParse   ErrorCode = "MANIFEST_PARSE"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"

	// Resolution errors
	ErrClaimAmbiguous     ErrorCode = "CLAIM_AMBIGUOUS"
	ErrConflictUnresolved ErrorCode = "CONFLICT_UNRESOLVED"
	ErrUnfoldFailed       ErrorCode = "UNFOLD_FAILED"

	// Lock errors
	ErrLockHeld    ErrorCode = "LOCK_HELD"
	ErrLockAcquire ErrorCode = "LOCK_ACQUIRE"

	// Backup and restore errors
	ErrBackupFailed   ErrorCode = "BACKUP_FAILED"
	ErrBackupNotFound ErrorCode = "BACKUP_NOT_FOUND"
	ErrRestoreFailed  ErrorCode = "RESTORE_FAILED"

	// Deployment errors
	ErrExecuteFailed ErrorCode = "EXECUTE_FAILED"

	// Host identity errors
	ErrHostUnknown ErrorCode = "HOST_UNKNOWN"

	// FileSystem errors
	ErrFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// DotfoldError represents a structured error with code and details
type DotfoldError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DotfoldError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DotfoldError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DotfoldError) Is(target error) bool {
	var targetErr *DotfoldError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DotfoldError with the given code and message
func New(code ErrorCode, message string) *DotfoldError {
	return &DotfoldError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DotfoldError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DotfoldError {
	return &DotfoldError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DotfoldError
func Wrap(err error, code ErrorCode, message string) *DotfoldError {
	if err == nil {
		return nil
	}
	return &DotfoldError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DotfoldError {
	if err == nil {
		return nil
	}
	return &DotfoldError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DotfoldError) WithDetail(key string, value interface{}) *DotfoldError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *DotfoldError) WithDetails(details map[string]interface{}) *DotfoldError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var dfErr *DotfoldError
	if errors.As(err, &dfErr) {
		return dfErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DotfoldError
func GetErrorCode(err error) ErrorCode {
	var dfErr *DotfoldError
	if errors.As(err, &dfErr) {
		return dfErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DotfoldError
func GetErrorDetails(err error) map[string]interface{} {
	var dfErr *DotfoldError
	if errors.As(err, &dfErr) {
		return dfErr.Details
	}
	return nil
}
