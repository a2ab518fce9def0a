package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a collaborator is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed connection to a collaborator.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates an operation ran past its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Client errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeMediaTooLong indicates the source media exceeds the duration ceiling.
	ErrCodeMediaTooLong ErrorCode = "MEDIA_TOO_LONG"
	// ErrCodeUnsupportedMedia indicates the source carries nothing we can transcribe.
	ErrCodeUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA"
	// ErrCodeForbidden indicates the caller failed the API key check.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeRateLimited indicates the caller exceeded its request rate.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeInvariant indicates the pipeline reached a state it must never reach.
	ErrCodeInvariant ErrorCode = "PIPELINE_INVARIANT"
	// ErrCodeProtocol indicates a collaborator answered with a malformed payload.
	ErrCodeProtocol ErrorCode = "PROTOCOL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsClientCode reports whether errors with this code are the caller's fault.
// Client errors are answered but never alerted.
func IsClientCode(code ErrorCode) bool {
	switch code {
	case ErrCodeNotFound, ErrCodeInvalidInput, ErrCodeMissingField,
		ErrCodeMediaTooLong, ErrCodeUnsupportedMedia, ErrCodeForbidden, ErrCodeRateLimited:
		return true
	}
	return false
}
