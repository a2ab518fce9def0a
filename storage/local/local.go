// Package local serves chunks straight out of the uploads directory.
package local

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(_ context.Context, cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath, cfg.PublicURL, cfg.RoutePrefix)
	})
}

// Storage implements storage.Storage using the local filesystem.
type Storage struct {
	basePath    string
	publicURL   string
	routePrefix string
}

// NewStorage creates a new local filesystem storage. When publicURL is
// empty, URL falls back to file:// URLs.
func NewStorage(basePath, publicURL, routePrefix string) (*Storage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Storage{
		basePath:    abs,
		publicURL:   strings.TrimRight(publicURL, "/"),
		routePrefix: strings.Trim(routePrefix, "/"),
	}, nil
}

// BasePath returns the absolute directory objects live in.
func (s *Storage) BasePath() string { return s.basePath }

func (s *Storage) resolve(key string) (string, error) {
	full := filepath.Join(s.basePath, filepath.Clean("/"+key))
	if !strings.HasPrefix(full, s.basePath+string(filepath.Separator)) && full != s.basePath {
		return "", fmt.Errorf("storage: key %q escapes base path", key)
	}
	return full, nil
}

// Upload writes data from reader to a local file.
func (s *Storage) Upload(_ context.Context, key string, reader io.Reader) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close() //nolint:errcheck // close error after a successful copy is not actionable

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("storage: write file: %w", err)
	}
	return nil
}

// Delete removes a local file. Returns nil if the file does not exist.
func (s *Storage) Delete(_ context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

// Exists checks whether a local file exists.
func (s *Storage) Exists(_ context.Context, key string) (bool, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat file: %w", err)
	}
	return true, nil
}

// URL returns PublicURL/RoutePrefix/key, or a file:// URL when no public
// URL is configured.
func (s *Storage) URL(_ context.Context, key string) (string, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if s.publicURL == "" {
		return (&url.URL{Scheme: "file", Path: fullPath}).String(), nil
	}
	rel := filepath.ToSlash(strings.TrimPrefix(fullPath, s.basePath+string(filepath.Separator)))
	return s.publicURL + "/" + path.Join(s.routePrefix, rel), nil
}

// ServeKey reports the key of a file that already lives under the base path.
func (s *Storage) ServeKey(localPath string) (string, bool) {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(s.basePath, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

var (
	_ storage.Storage       = (*Storage)(nil)
	_ storage.InPlaceServer = (*Storage)(nil)
)
