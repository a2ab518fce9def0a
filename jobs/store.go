package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/redis"
)

// ErrNotFound is returned for unknown task ids.
var ErrNotFound = errors.New("jobs: task not found")

// Store keeps job status for lookup by task id.
type Store interface {
	// Create registers a queued job.
	Create(ctx context.Context, job MediaJob) error
	// Transition moves a job to status to. Illegal transitions return a
	// PIPELINE_INVARIANT error and leave the record unchanged.
	Transition(ctx context.Context, id string, to Status, result *Envelope) error
	// Get returns the record for id or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)
}

func applyTransition(rec *Record, to Status, result *Envelope) error {
	if !rec.Status.CanTransition(to) {
		return apperrors.Invariant(fmt.Sprintf("illegal job transition %s -> %s", rec.Status, to)).
			WithDetail("task_id", rec.TaskID)
	}
	rec.Status = to
	if result != nil {
		rec.Result = result
	}
	rec.UpdatedAt = time.Now()
	return nil
}

func newRecord(job MediaJob) *Record {
	now := time.Now()
	return &Record{TaskID: job.ID, Kind: job.Kind, Status: StatusQueued, CreatedAt: now, UpdatedAt: now}
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Create(_ context.Context, job MediaJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[job.ID] = newRecord(job)
	return nil
}

func (s *MemoryStore) Transition(_ context.Context, id string, to Status, result *Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	next := *rec
	if err := applyTransition(&next, to, result); err != nil {
		return err
	}
	s.records[id] = &next
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *rec
	return &out, nil
}

// RedisStore keeps records in Redis as JSON with a TTL.
type RedisStore struct {
	store *redis.TypedStore[Record]
	ttl   time.Duration
}

// NewRedisStore creates a RedisStore under keyPrefix. ttl 0 keeps records forever.
func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{store: redis.NewTypedStore[Record](client, keyPrefix), ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, job MediaJob) error {
	return s.store.Save(ctx, job.ID, newRecord(job), s.ttl)
}

// Transition is a read-modify-write; a task is only ever advanced by the
// worker that owns it.
func (s *RedisStore) Transition(ctx context.Context, id string, to Status, result *Envelope) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := applyTransition(rec, to, result); err != nil {
		return err
	}
	return s.store.Save(ctx, id, rec, s.ttl)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}
