package httpclient

import (
	"net/http"
	"testing"
)

func TestAuthApply(t *testing.T) {
	tests := []struct {
		name  string
		auth  *AuthConfig
		check func(t *testing.T, r *http.Request)
	}{
		{"bearer", BearerAuth("slack-token"), func(t *testing.T, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer slack-token" {
				t.Errorf("unexpected header %q", got)
			}
		}},
		{"raw header", RawHeaderAuth("authorization", "rp-token"), func(t *testing.T, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "rp-token" {
				t.Errorf("expected raw token, got %q", got)
			}
		}},
		{"query key", QueryKeyAuth("key", "yt-key"), func(t *testing.T, r *http.Request) {
			if got := r.URL.Query().Get("key"); got != "yt-key" {
				t.Errorf("expected query key, got %q", got)
			}
		}},
		{"nil", nil, func(t *testing.T, r *http.Request) {
			if len(r.Header) != 0 {
				t.Errorf("expected no headers, got %v", r.Header)
			}
		}},
		{"empty token", BearerAuth(""), func(t *testing.T, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				t.Error("empty token must not set a header")
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "https://api.example/v1", nil)
			tt.auth.apply(req)
			tt.check(t, req)
		})
	}
}
