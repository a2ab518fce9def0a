package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_Error_WithCause(t *testing.T) {
	err := ExternalServiceError("runpod", fmt.Errorf("connection reset"))
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
	if !stderrors.Is(err, err.Cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestAppError_MediaTooLong(t *testing.T) {
	msg := "Only videos shorter than 2 hours are supported. Please upload a shorter video."
	err := MediaTooLong(msg, 7201, 7200)
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.HTTPStatus)
	}
	if err.Message != msg {
		t.Errorf("expected message %q, got %q", msg, err.Message)
	}
	if !err.IsClientError() {
		t.Error("MediaTooLong should be a client error")
	}
}

func TestAppError_Protocol_NotRetryable(t *testing.T) {
	err := Protocol("runpod", "missing segments")
	if err.Retryable {
		t.Error("protocol errors must not be retryable")
	}
	if err.IsClientError() {
		t.Error("protocol errors are not client errors")
	}
}

func TestAppError_Forbidden_DefaultMessage(t *testing.T) {
	err := Forbidden("")
	if err.Message != "The user is unauthorized" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.HTTPStatus != http.StatusForbidden {
		t.Errorf("expected 403, got %d", err.HTTPStatus)
	}
}

func TestMarkReported(t *testing.T) {
	base := Invariant("no chunks produced")
	marked := MarkReported(base)
	if !IsReported(marked) {
		t.Fatal("expected marked error to be reported")
	}
	if IsReported(base) {
		t.Error("marking must not mutate the original error")
	}
	if again := MarkReported(marked); again != marked {
		t.Error("marking twice should return the same error")
	}
	if MarkReported(nil) != nil {
		t.Error("expected nil to stay nil")
	}

	wrapped := fmt.Errorf("job abc: %w", marked)
	if !IsReported(wrapped) {
		t.Error("expected mark to survive wrapping")
	}
	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeInvariant {
		t.Error("expected AppError to stay reachable through the mark")
	}
}

func TestStatusAndDetail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"app error", Validation("Not a valid YouTube URL."), 400, "Not a valid YouTube URL."},
		{"wrapped app error", fmt.Errorf("resolve: %w", NotFound("video", "x")), 404, "The requested video was not found."},
		{"plain error", fmt.Errorf("ffmpeg exploded"), 500, "ffmpeg exploded"},
		{"reported", MarkReported(Timeout("polling")), 504, "polling took too long to finish."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, got)
			}
			if got := DetailOf(tt.err); got != tt.wantDetail {
				t.Errorf("expected detail %q, got %q", tt.wantDetail, got)
			}
		})
	}
}

func TestShouldAlert(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"client error", InvalidInput("youtube_url", "bad"), false},
		{"forbidden", Forbidden(""), false},
		{"transient", ExternalServiceError("youtube", nil), true},
		{"invariant", Invariant("x"), true},
		{"plain", fmt.Errorf("boom"), true},
		{"already reported", MarkReported(fmt.Errorf("boom")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldAlert(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
