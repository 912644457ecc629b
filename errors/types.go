package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Watch errors
	ErrCodeWatchFailed    ErrorCode = "WATCH_FAILED"
	ErrCodeWatchNotFound  ErrorCode = "WATCH_NOT_FOUND"
	ErrCodeWatcherClosed  ErrorCode = "WATCHER_CLOSED"
	ErrCodeStatusDir      ErrorCode = "STATUS_DIR_UNAVAILABLE"

	// Session errors
	ErrCodeSessionExists   ErrorCode = "SESSION_EXISTS"
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeBridgeUnmapped  ErrorCode = "BRIDGE_UNMAPPED"

	// Parse errors
	ErrCodeSnapshotInvalid   ErrorCode = "SNAPSHOT_INVALID"
	ErrCodeTranscriptInvalid ErrorCode = "TRANSCRIPT_INVALID"

	// Daemon errors
	ErrCodeDaemonRunning    ErrorCode = "DAEMON_ALREADY_RUNNING"
	ErrCodeDaemonNotRunning ErrorCode = "DAEMON_NOT_RUNNING"

	// General errors
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// WatchError represents a structured error with context
type WatchError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *WatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *WatchError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *WatchError) WithDetail(key string, value interface{}) *WatchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *WatchError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new WatchError
func New(code ErrorCode, message string) *WatchError {
	return &WatchError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a WatchError
func Wrap(err error, code ErrorCode, message string) *WatchError {
	return &WatchError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific WatchError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	watchErr, ok := err.(*WatchError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return watchErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	watchErr, ok := err.(*WatchError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return watchErr.Code
}
