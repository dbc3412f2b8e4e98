package errors

import "fmt"

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeNotFound       ErrCode = "NOT_FOUND"
	ErrCodeUpstream       ErrCode = "UPSTREAM_ERROR"
	ErrCodeMalformedStats ErrCode = "MALFORMED_STATS"
	ErrCodePersistence    ErrCode = "PERSISTENCE_ERROR"
	ErrCodeBadRequest     ErrCode = "BAD_REQUEST"
	ErrCodeRateLimited    ErrCode = "RATE_LIMITED"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUpstreamError creates a new upstream API error
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUpstream,
		Message: message,
		Err:     err,
	}
}

// NewMalformedStatsError creates an error for a stats payload that is
// not syntactically valid serialized data
func NewMalformedStatsError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedStats,
		Message: message,
		Err:     err,
	}
}

// NewPersistenceError creates a new persistence error
func NewPersistenceError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodePersistence,
		Message: message,
		Err:     err,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: message,
	}
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeNotFound
	}
	return false
}

// IsUpstream checks if the error is an upstream API error
func IsUpstream(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeUpstream
	}
	return false
}

// IsMalformedStats checks if the error is a malformed stats error
func IsMalformedStats(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeMalformedStats
	}
	return false
}
