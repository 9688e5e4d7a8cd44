package errors

// ErrorCode represents a machine-readable error identifier returned to clients.
type ErrorCode string

// Gateway errors (upstream side)
const (
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamTimeout     ErrorCode = "upstream_timeout"
	ErrCodeBreakerOpen         ErrorCode = "breaker_open"
)

// Client errors
const (
	ErrCodeRateLimited  ErrorCode = "rate_limited"
	ErrCodeUnauthorized ErrorCode = "unauthorized"
)

// Internal/System errors
const (
	ErrCodeInvalidHeaderValue ErrorCode = "invalid_header_value"
	ErrCodeConfigError        ErrorCode = "config_error"
	ErrCodeInternalError      ErrorCode = "internal_error"
)

// IsRetryable returns whether an error code represents a retryable error.
// Transient upstream and throttling failures are retryable; configuration
// and authorization failures are not.
func (e ErrorCode) IsRetryable() bool {
	switch e {
	case ErrCodeUpstreamUnavailable,
		ErrCodeUpstreamTimeout,
		ErrCodeBreakerOpen,
		ErrCodeRateLimited:
		return true
	default:
		return false
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	case ErrCodeUnauthorized:
		return 401
	case ErrCodeRateLimited:
		return 429
	case ErrCodeUpstreamTimeout:
		return 504
	case ErrCodeUpstreamUnavailable, ErrCodeBreakerOpen:
		return 502
	default:
		return 500
	}
}
