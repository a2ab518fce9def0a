package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/process"
)

// fakeRunner scripts ffprobe/ffmpeg. Probe output is keyed by file path;
// ffmpeg calls create their output files so the filesystem side effects
// match the real tools.
type fakeRunner struct {
	probes   map[string]string
	segments int
	failWith error
	calls    []process.Command
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) (*process.Result, error) {
	f.calls = append(f.calls, cmd)
	if f.failWith != nil {
		return &process.Result{ExitCode: 1, Stderr: []byte("boom")}, f.failWith
	}
	switch cmd.Binary {
	case "ffprobe":
		path := cmd.Args[len(cmd.Args)-1]
		out, ok := f.probes[path]
		if !ok {
			return &process.Result{ExitCode: 1}, fmt.Errorf("no probe for %s", path)
		}
		return &process.Result{Stdout: []byte(out)}, nil
	case "ffmpeg":
		if containsArg(cmd.Args, "segment") {
			pattern := cmd.Args[len(cmd.Args)-2]
			for i := 0; i < f.segments; i++ {
				if err := os.WriteFile(fmt.Sprintf(pattern, i), []byte("x"), 0o644); err != nil {
					return nil, err
				}
			}
			return &process.Result{}, nil
		}
		out := cmd.Args[len(cmd.Args)-2]
		return &process.Result{}, os.WriteFile(out, []byte("audio"), 0o644)
	}
	return nil, fmt.Errorf("unexpected binary %s", cmd.Binary)
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func probeJSON(duration string, streams ...string) string {
	parts := make([]string, len(streams))
	for i, s := range streams {
		kind, codec, _ := strings.Cut(s, ":")
		parts[i] = fmt.Sprintf(`{"index":%d,"codec_type":%q,"codec_name":%q}`, i, kind, codec)
	}
	return fmt.Sprintf(`{"streams":[%s],"format":{"duration":%q}}`, strings.Join(parts, ","), duration)
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCanonicalExt(t *testing.T) {
	tests := map[string]string{"mp3": ".mp3", "aac": ".aac", "AAC": ".aac", "opus": ".opus", "flac": ".flac", "": ".aac"}
	for codec, want := range tests {
		if got := CanonicalExt(codec); got != want {
			t.Errorf("CanonicalExt(%q) = %q, want %q", codec, got, want)
		}
	}
	if stem := NewFileStem(); len(stem) != 32 || strings.Contains(stem, "-") {
		t.Errorf("expected 32 hex chars, got %q", stem)
	}
}

func TestEnsureAudioOnly(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		probe     string
		wantExt   string
		wantSame  bool
		wantCalls int
		wantCode  apperrors.ErrorCode
	}{
		{"audio only with matching ext", "talk.mp3", probeJSON("60", "audio:mp3"), ".mp3", true, 1, ""},
		{"audio only with wrong ext is renamed", "talk.m4a", probeJSON("60", "audio:aac"), ".aac", false, 1, ""},
		{"video is extracted", "clip.mp4", probeJSON("60", "video:h264", "audio:aac"), ".aac", false, 2, ""},
		{"multiple audio streams are extracted", "dual.mkv", probeJSON("60", "audio:opus", "audio:opus"), ".opus", false, 2, ""},
		{"no audio is rejected", "silent.mp4", probeJSON("60", "video:h264"), "", false, 1, apperrors.ErrCodeUnsupportedMedia},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, tt.file)
			touch(t, in)
			runner := &fakeRunner{probes: map[string]string{in: tt.probe}}
			n := NewNormalizer(Config{UploadDir: dir}, runner, logger.Nop())

			got, err := n.EnsureAudioOnly(context.Background(), in)
			if len(runner.calls) != tt.wantCalls {
				t.Errorf("expected %d tool calls, got %d", tt.wantCalls, len(runner.calls))
			}
			if tt.wantCode != "" {
				appErr, ok := apperrors.AsAppError(err)
				if !ok || appErr.Code != tt.wantCode {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got == in) != tt.wantSame {
				t.Errorf("expected same=%v, got %q for %q", tt.wantSame, got, in)
			}
			if filepath.Ext(got) != tt.wantExt {
				t.Errorf("expected ext %s, got %s", tt.wantExt, got)
			}
			if _, err := os.Stat(got); err != nil {
				t.Errorf("expected output to exist: %v", err)
			}
		})
	}
}

func TestEnsureAudioOnly_ExtractKeepsInputAndUsesCopy(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "clip.mp4")
	touch(t, in)
	runner := &fakeRunner{probes: map[string]string{in: probeJSON("60", "video:h264", "audio:mp3")}}
	n := NewNormalizer(Config{UploadDir: dir}, runner, logger.Nop())

	out, err := n.EnsureAudioOnly(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(in); err != nil {
		t.Error("input must not be deleted")
	}
	args := strings.Join(runner.calls[1].Args, " ")
	want := fmt.Sprintf("-i %s -vn -acodec copy %s -y", in, out)
	if args != want {
		t.Errorf("unexpected ffmpeg args:\n got %s\nwant %s", args, want)
	}
}

func TestEnsureAudioOnly_ProbeFailure(t *testing.T) {
	runner := &fakeRunner{failWith: errors.New("exit status 1")}
	n := NewNormalizer(Config{UploadDir: t.TempDir()}, runner, logger.Nop())
	_, err := n.EnsureAudioOnly(context.Background(), "/nope.mp4")
	if apperrors.StatusOf(err) != 500 {
		t.Fatalf("expected 500-class error, got %v", err)
	}
	if !apperrors.ShouldAlert(err) {
		t.Error("probe failures must be alerted")
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name       string
		duration   string
		chunkSec   int
		produced   int
		wantChunks int
		wantSource bool
	}{
		{"short audio is a single source chunk", "600", 1200, 0, 1, true},
		{"exact boundary is one chunk", "1200", 1200, 0, 1, true},
		{"two full chunks", "2400", 1200, 2, 2, false},
		{"remainder chunk", "2500.5", 1200, 3, 3, false},
		{"unknown duration still splits", "", 1200, 2, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "abc.mp3")
			touch(t, in)
			runner := &fakeRunner{probes: map[string]string{in: probeJSON(tt.duration, "audio:mp3")}, segments: tt.produced}
			s := NewSegmenter(Config{}, runner, logger.Nop())

			chunks, err := s.Segment(context.Background(), in, tt.chunkSec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(chunks) != tt.wantChunks {
				t.Fatalf("expected %d chunks, got %d", tt.wantChunks, len(chunks))
			}
			if tt.wantSource {
				if chunks[0].Path != in || !chunks[0].Source {
					t.Errorf("expected the input itself, got %+v", chunks[0])
				}
				return
			}
			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunk %d has index %d", i, c.Index)
				}
				if c.Offset != float64(i*tt.chunkSec) {
					t.Errorf("chunk %d offset %v", i, c.Offset)
				}
				if filepath.Ext(c.Path) != ".mp3" || !strings.Contains(filepath.Base(c.Path), fmt.Sprintf("_chunk_%05d", i)) {
					t.Errorf("unexpected chunk name %s", c.Path)
				}
				if i > 0 && chunks[i-1].Path >= c.Path {
					t.Errorf("chunk names must sort in index order")
				}
			}
		})
	}
}

func TestSegment_NoOutputIsInvariantViolation(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "abc.aac")
	touch(t, in)
	runner := &fakeRunner{probes: map[string]string{in: probeJSON("5000", "audio:aac")}, segments: 0}
	s := NewSegmenter(Config{}, runner, logger.Nop())

	_, err := s.Segment(context.Background(), in, 1200)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeInvariant {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestSegment_IgnoresOtherJobsFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "job1.mp3")
	touch(t, in)
	touch(t, filepath.Join(dir, "job2_chunk_00000.mp3"))
	runner := &fakeRunner{probes: map[string]string{in: probeJSON("3000", "audio:mp3")}, segments: 3}
	s := NewSegmenter(Config{}, runner, logger.Nop())

	chunks, err := s.Segment(context.Background(), in, 1200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range chunks {
		if !strings.HasPrefix(filepath.Base(c.Path), "job1_chunk_") {
			t.Errorf("picked up foreign chunk %s", c.Path)
		}
	}
}

func TestRemoveChunks(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a_chunk_00000.mp3")
	touch(t, a)
	if failed := RemoveChunks([]string{a, filepath.Join(dir, "missing.mp3")}); len(failed) != 0 {
		t.Errorf("expected missing files to be ignored, got %v", failed)
	}
	if _, err := os.Stat(a); !os.IsNotExist(err) {
		t.Error("expected chunk to be removed")
	}
}
