package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeConfigMissing     = "CONFIG_MISSING"
	ErrCodeNavTimeout        = "NAVIGATION_TIMEOUT"
	ErrCodeNavFailure        = "NAVIGATION_FAILED"
	ErrCodeExtractionInvalid = "EXTRACTION_INVALID"
	ErrCodeRemoteCall        = "REMOTE_CALL_FAILED"
	ErrCodeBrowserCrash      = "BROWSER_CRASH"
	ErrCodeBlocked           = "BLOCKED"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AcquireError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type AcquireError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *AcquireError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// NewAcquireError creates a new AcquireError.
func NewAcquireError(code, message string, err error) *AcquireError {
	return &AcquireError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *AcquireError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
