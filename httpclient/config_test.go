package httpclient

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != defaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	kept := Config{Timeout: time.Second}
	kept.ApplyDefaults()
	if kept.Timeout != time.Second {
		t.Errorf("expected timeout to be preserved, got %v", kept.Timeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (&Config{}).Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}
	if err := (&Config{Timeout: time.Second, ProxyURL: "http://u:p@gate.example:7000"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (&Config{Timeout: time.Second, ProxyURL: "://bad"}).Validate(); err == nil {
		t.Error("expected error for malformed proxy url")
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.RetryIf == nil {
		t.Fatal("expected RetryIf")
	}
	if !cfg.RetryIf(ClassifyStatusCode(503, nil)) {
		t.Error("expected 503 to be retried")
	}
	if cfg.RetryIf(ClassifyStatusCode(400, nil)) {
		t.Error("expected 400 not to be retried")
	}
}
