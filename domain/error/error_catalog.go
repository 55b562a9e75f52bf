package error

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Credential refresh errors (1xxx)
	ErrCodeRefreshFailed      ErrorCode = "REFRESH_1001"
	ErrCodeRefreshMalformed   ErrorCode = "REFRESH_1002"
	ErrCodeMissingCredentials ErrorCode = "REFRESH_1003"

	// Guest token issuance errors (2xxx)
	ErrCodeIssuanceFailed ErrorCode = "ISSUE_2001"

	// Persistence errors (3xxx)
	ErrCodePersistenceFailed ErrorCode = "STORE_3001"

	// Rate limiting errors (4xxx)
	ErrCodeRateLimitExceeded ErrorCode = "RATE_4001"

	// Server errors (6xxx)
	ErrCodeConfigurationError ErrorCode = "SERVER_6003"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Credential refresh errors
func ErrRefreshFailed(cause error) *AppError {
	return NewAppError(ErrCodeRefreshFailed, "Error refreshing the access token", causeDetails(cause), cause)
}

func ErrRefreshMalformed(details string) *AppError {
	return NewAppError(ErrCodeRefreshMalformed, "Malformed token endpoint response", details, nil)
}

// ErrMissingCredentials names the OAuth settings that are unset. The service
// still starts; refreshes fail until they are provided.
func ErrMissingCredentials(settings string) *AppError {
	return NewAppError(ErrCodeMissingCredentials, "OAuth client is not fully configured", fmt.Sprintf("Missing: %s", settings), nil)
}

// Guest token errors
func ErrIssuanceFailed(cause error) *AppError {
	return NewAppError(ErrCodeIssuanceFailed, "Failed to create the guest token", causeDetails(cause), cause)
}

// Persistence errors
func ErrPersistenceFailed(path string, cause error) *AppError {
	return NewAppError(ErrCodePersistenceFailed, "Failed to record access request", fmt.Sprintf("Path: %s", path), cause)
}

// Rate limiting errors
func ErrRateLimitExceeded(key string) *AppError {
	return NewAppError(ErrCodeRateLimitExceeded, "Too many requests", fmt.Sprintf("Key: %s", key), nil)
}

// Server errors
func ErrConfigurationError(config string) *AppError {
	return NewAppError(ErrCodeConfigurationError, "Configuration error", fmt.Sprintf("Config: %s", config), nil)
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetHTTPStatusCode maps an error to the status code a handler should answer with.
func GetHTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case ErrCodeRateLimitExceeded:
			return http.StatusTooManyRequests
		case ErrCodeConfigurationError:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}

func causeDetails(cause error) string {
	if cause == nil {
		return ""
	}
	return cause.Error()
}
