package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the object store chunks are published to.
type Storage interface {
	// Upload writes data from reader to the given key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Delete removes the object at key. Returns nil if it does not exist.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a URL the inference service can fetch the object from.
	URL(ctx context.Context, key string) (string, error)
}

// SignedURLProvider is implemented by backends that can issue time-limited
// URLs for private objects.
type SignedURLProvider interface {
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// InPlaceServer is implemented by backends that can serve a local file
// without copying it. ServeKey reports the key the file is reachable under.
type InPlaceServer interface {
	ServeKey(localPath string) (key string, ok bool)
}
