package process

import (
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process never started or was killed.
	ExitCode int
	Duration time.Duration
}

// StderrTail returns the last n lines of stderr. Media tools print their
// actual complaint at the end of a long banner.
func (r *Result) StderrTail(n int) string {
	if r == nil {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(string(r.Stderr)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
