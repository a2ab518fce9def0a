package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorResponse is the JSON error body returned by non-job endpoints.
// Detail mirrors Error.Message for clients that only read detail.
type ErrorResponse struct {
	Detail string    `json:"detail"`
	Error  ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Detail: e.Message,
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the status code a job envelope reports for err.
// Errors that are not AppErrors are reported as 500.
func StatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// DetailOf returns the caller-facing detail text for err.
func DetailOf(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// ShouldAlert reports whether err deserves an operator alert.
// Client errors and errors already alerted are skipped.
func ShouldAlert(err error) bool {
	if err == nil || IsReported(err) {
		return false
	}
	if appErr, ok := AsAppError(err); ok && appErr.IsClientError() {
		return false
	}
	return true
}
