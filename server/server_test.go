package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/component"
	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1", Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := New(cfg, logger.Nop())
	s.ApplyDefaults("scribe", nil)
	return s
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8000 || cfg.MaxBodySize != "2GB" {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected port error")
	}
}

func TestServer_DefaultEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/", "/health", "/liveness", "/readiness", "/info", "/version"} {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", path, http.NoBody))
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-Id") == "" {
			t.Errorf("GET %s has no request id", path)
		}
	}
}

func TestServer_StartStop(t *testing.T) {
	s := newTestServer(t)
	c := NewComponent(s)
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %+v", h)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + s.Addr() + "/liveness")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health = %+v", h)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestComponent_Routes(t *testing.T) {
	s := newTestServer(t)
	s.GinEngine().POST("/transcribe_audio", func(c *gin.Context) {})
	routes := NewComponent(s).Routes()
	if len(routes) == 0 || routes[0].Path != "/transcribe_audio" {
		t.Fatalf("API routes should come first: %+v", routes)
	}
}

func TestHandlerName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"github.com/kbukum/scribe/api.(*Handler).Status-fm", "Handler.Status"},
		{"github.com/kbukum/scribe/server/endpoint.Health.func1", "Health"},
	}
	for _, tt := range tests {
		if got := handlerName(tt.in); got != tt.want {
			t.Errorf("handlerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err    error
		status int
		detail string
	}{
		{apperrors.NotFound("task", "x"), http.StatusNotFound, ""},
		{apperrors.Validation("Invalid YouTube URL"), http.StatusBadRequest, "Invalid YouTube URL"},
		{errors.New("/tmp/secret path"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rr)
		RespondWithError(c, tt.err)
		if rr.Code != tt.status {
			t.Errorf("%v: status = %d", tt.err, rr.Code)
		}
		if tt.detail != "" && !strings.Contains(rr.Body.String(), `"detail":"`+tt.detail+`"`) {
			t.Errorf("%v: body = %s", tt.err, rr.Body.String())
		}
		if strings.Contains(rr.Body.String(), "/tmp/secret") {
			t.Error("internal error leaked")
		}
	}
}
