package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TypedStore keeps JSON-encoded values of one type under a shared key
// prefix. Job status records use it.
type TypedStore[C any] struct {
	client *Client
	prefix string
}

// NewTypedStore returns a store whose keys are "<prefix>:<key>", or the bare
// key when prefix is empty.
func NewTypedStore[C any](client *Client, prefix string) *TypedStore[C] {
	return &TypedStore[C]{client: client, prefix: prefix}
}

func (s *TypedStore[C]) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

// Load returns (nil, nil) for a missing key.
func (s *TypedStore[C]) Load(ctx context.Context, k string) (*C, error) {
	raw, err := s.client.Get(ctx, s.key(k))
	switch {
	case IsNil(err):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis load %s: %w", k, err)
	}
	v := new(C)
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return nil, fmt.Errorf("redis decode %s: %w", k, err)
	}
	return v, nil
}

// Save writes v with the given TTL; 0 keeps it forever.
func (s *TypedStore[C]) Save(ctx context.Context, k string, v *C, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", k, err)
	}
	if err := s.client.Set(ctx, s.key(k), string(b), ttl); err != nil {
		return fmt.Errorf("redis save %s: %w", k, err)
	}
	return nil
}

// Delete removes k.
func (s *TypedStore[C]) Delete(ctx context.Context, k string) error {
	if err := s.client.Del(ctx, s.key(k)); err != nil {
		return fmt.Errorf("redis delete %s: %w", k, err)
	}
	return nil
}
