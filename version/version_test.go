package version

import (
	"strings"
	"testing"
)

func restore() func() {
	v, c, b, bt := Version, GitCommit, GitBranch, BuildTime
	return func() { Version, GitCommit, GitBranch, BuildTime = v, c, b, bt }
}

func TestGet(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		buildTime   string
		wantRelease bool
	}{
		{"dev", "dev", "", false},
		{"release", "1.0.0", "2026-01-15T10:30:00Z", true},
		{"dirty", "1.0.0-dirty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer restore()()
			Version, GitCommit, BuildTime = tt.version, "abc1234", tt.buildTime

			info := Get()
			if info.Version != tt.version || info.IsRelease != tt.wantRelease {
				t.Errorf("info = %+v", info)
			}
			if info.GitCommit != "abc1234" {
				t.Errorf("ldflags commit overridden: %q", info.GitCommit)
			}
			if tt.buildTime != "" && info.BuildDate.IsZero() {
				t.Error("BuildDate not parsed")
			}
		})
	}
}

func TestShort(t *testing.T) {
	defer restore()()
	Version, GitCommit = "1.2.0", "abc1234"
	if got := Short(); !strings.HasPrefix(got, "1.2.0-abc1234") {
		t.Errorf("Short() = %q", got)
	}
}

func TestString(t *testing.T) {
	defer restore()()
	Version, GitCommit, GitBranch, BuildTime = "1.2.0", "abc1234", "feature/x", "2026-01-15T10:30:00Z"
	got := String()
	for _, want := range []string{"1.2.0-abc1234", "(feature/x)", "built 2026-01-15T10:30:00Z"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}

	GitBranch = "main"
	if strings.Contains(String(), "(main)") {
		t.Error("default branch should be omitted")
	}
}
