package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStorage_URLAndServeKey(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir, "https://scribe.test/", "/uploads/")
	if err != nil {
		t.Fatal(err)
	}
	chunk := filepath.Join(dir, "abc_chunk_00001.mp3")

	key, ok := s.ServeKey(chunk)
	if !ok || key != "abc_chunk_00001.mp3" {
		t.Fatalf("ServeKey = %q, %v", key, ok)
	}
	url, err := s.URL(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://scribe.test/uploads/abc_chunk_00001.mp3" {
		t.Errorf("unexpected url %s", url)
	}

	if _, ok := s.ServeKey(filepath.Join(t.TempDir(), "elsewhere.mp3")); ok {
		t.Error("files outside the base path must not be served in place")
	}
}

func TestStorage_FileURLWithoutPublicURL(t *testing.T) {
	s, err := NewStorage(t.TempDir(), "", "uploads")
	if err != nil {
		t.Fatal(err)
	}
	url, _ := s.URL(context.Background(), "x.mp3")
	if !strings.HasPrefix(url, "file://") {
		t.Errorf("expected file url, got %s", url)
	}
}

func TestStorage_UploadExistsDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir(), "", "uploads")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Upload(ctx, "nested/a.mp3", strings.NewReader("data")); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "nested/a.mp3"); !ok {
		t.Fatal("expected object to exist")
	}
	b, _ := os.ReadFile(filepath.Join(s.BasePath(), "nested", "a.mp3"))
	if string(b) != "data" {
		t.Errorf("unexpected content %q", b)
	}
	if err := s.Delete(ctx, "nested/a.mp3"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "nested/a.mp3"); err != nil {
		t.Errorf("deleting a missing object must succeed: %v", err)
	}
	if ok, _ := s.Exists(ctx, "nested/a.mp3"); ok {
		t.Error("expected object to be gone")
	}
}

func TestStorage_KeyCannotEscape(t *testing.T) {
	s, err := NewStorage(t.TempDir(), "", "uploads")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Upload(context.Background(), "../../etc/x", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(s.BasePath(), "etc", "x")); err != nil {
		t.Errorf("expected traversal to be clamped under base path: %v", err)
	}
}
