package storage

import (
	"context"
	"fmt"
	"os"
)

// Publish makes the local file at localPath reachable by URL.
//
// Backends implementing InPlaceServer serve the file where it is; all
// others receive a copy under key. The returned key is what must later be
// passed to Delete.
func Publish(ctx context.Context, s Storage, localPath, key string) (url, storedKey string, err error) {
	if srv, ok := s.(InPlaceServer); ok {
		if k, ok := srv.ServeKey(localPath); ok {
			url, err = s.URL(ctx, k)
			if err != nil {
				return "", "", fmt.Errorf("storage: resolve url for %s: %w", k, err)
			}
			return url, "", nil
		}
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", "", fmt.Errorf("storage: open %s: %w", localPath, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	if err := s.Upload(ctx, key, f); err != nil {
		return "", "", err
	}
	url, err = s.URL(ctx, key)
	if err != nil {
		return "", key, fmt.Errorf("storage: resolve url for %s: %w", key, err)
	}
	return url, key, nil
}
