package util

import "testing"

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "", "https://cdn.example", "https://domain.example"); got != "https://cdn.example" {
		t.Errorf("expected first non-empty, got %q", got)
	}
	if got := Coalesce(0, 0, 42); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitizeEnvValue(t *testing.T) {
	tests := []struct{ in, want string }{
		{`  "quoted"  `, "quoted"},
		{`'single'`, "single"},
		{`"mismatched'`, `"mismatched'`},
		{"plain", "plain"},
		{`""`, ""},
	}
	for _, tt := range tests {
		if got := SanitizeEnvValue(tt.in); got != tt.want {
			t.Errorf("SanitizeEnvValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
