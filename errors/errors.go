package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is the human-readable text surfaced as the envelope detail.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status code reported for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// IsClientError reports whether the error was caused by the caller.
func (e *AppError) IsClientError() bool {
	return IsClientCode(e.Code) || (e.HTTPStatus >= 400 && e.HTTPStatus < 500)
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Collaborator errors ---

// ServiceUnavailable creates a new AppError for a collaborator that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// ConnectionFailed creates a new AppError for a failed connection to a collaborator.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for an operation that ran past its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s took too long to finish.", operation),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// ExternalServiceError creates a new AppError for a failure reported by an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("%s request failed.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
		Details: map[string]any{"service": service},
	}
}

// Protocol creates a new AppError for a collaborator response that breaks its contract.
// Protocol errors are fatal and never retried.
func Protocol(service, problem string) *AppError {
	return &AppError{
		Code: ErrCodeProtocol, Message: fmt.Sprintf("%s returned an invalid response: %s", service, problem),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"service": service},
	}
}

// --- Client errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError carrying a caller-facing message verbatim.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// MediaTooLong creates a new AppError for a source longer than the accepted ceiling.
func MediaTooLong(message string, durationSeconds, limitSeconds int) *AppError {
	return &AppError{
		Code: ErrCodeMediaTooLong, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"duration_seconds": durationSeconds, "limit_seconds": limitSeconds},
	}
}

// UnsupportedMedia creates a new AppError for media the pipeline cannot transcribe.
func UnsupportedMedia(reason string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedMedia, Message: fmt.Sprintf("unsupported media: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Forbidden creates a new AppError for a caller that failed authorization.
func Forbidden(message string) *AppError {
	if message == "" {
		message = "The user is unauthorized"
	}
	return &AppError{
		Code: ErrCodeForbidden, Message: message,
		HTTPStatus: http.StatusForbidden, Retryable: false,
	}
}

// --- Internal errors ---

// Internal creates a new AppError for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again later.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// Invariant creates a new AppError for a pipeline state that must never occur.
func Invariant(what string) *AppError {
	return &AppError{
		Code: ErrCodeInvariant, Message: fmt.Sprintf("pipeline invariant violated: %s", what),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
	}
}
