package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Runtime bridge errors
	ErrCodeRuntimeNotReady    ErrorCode = "RUNTIME_NOT_READY"
	ErrCodeRuntimeUnreachable ErrorCode = "RUNTIME_UNREACHABLE"
	ErrCodeCommandFailed      ErrorCode = "COMMAND_FAILED"
	ErrCodeCommandTimeout     ErrorCode = "COMMAND_TIMEOUT"

	// Project errors
	ErrCodeCompileFailed       ErrorCode = "COMPILE_FAILED"
	ErrCodeProjectNotLoaded    ErrorCode = "PROJECT_NOT_LOADED"
	ErrCodeProjectCreateFailed ErrorCode = "PROJECT_CREATE_FAILED"
	ErrCodeBundleFailed        ErrorCode = "BUNDLE_FAILED"

	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Terminal errors
	ErrCodePtyFailed      ErrorCode = "PTY_FAILED"
	ErrCodePtySessionGone ErrorCode = "PTY_SESSION_GONE"

	// Local persistence errors
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"

	// Save watcher errors
	ErrCodeWatcherFailed ErrorCode = "WATCHER_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// VividError represents a structured error with context
type VividError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *VividError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *VividError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *VividError) WithDetail(key string, value interface{}) *VividError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *VividError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new VividError
func New(code ErrorCode, message string) *VividError {
	return &VividError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a VividError
func Wrap(err error, code ErrorCode, message string) *VividError {
	return &VividError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific VividError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	vividErr, ok := err.(*VividError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return vividErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	vividErr, ok := err.(*VividError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return vividErr.Code
}
