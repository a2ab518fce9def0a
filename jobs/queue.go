package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kbukum/scribe/redis"
)

// Queue hands accepted jobs to workers.
type Queue interface {
	Enqueue(ctx context.Context, job MediaJob) error
	// Dequeue blocks until a job is available or ctx ends.
	Dequeue(ctx context.Context) (MediaJob, error)
}

// MemoryQueue is a bounded in-process Queue.
type MemoryQueue struct {
	ch chan MediaJob
}

// NewMemoryQueue creates a MemoryQueue holding up to size jobs.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 128
	}
	return &MemoryQueue{ch: make(chan MediaJob, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job MediaJob) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (MediaJob, error) {
	select {
	case job := <-q.ch:
		return job, nil
	case <-ctx.Done():
		return MediaJob{}, ctx.Err()
	}
}

// RedisQueue is a FIFO Redis list shared by every worker process.
type RedisQueue struct {
	client *redis.Client
	key    string
	poll   time.Duration
}

// NewRedisQueue creates a RedisQueue on list key. poll bounds each blocking
// pop so cancellation is observed.
func NewRedisQueue(client *redis.Client, key string, poll time.Duration) *RedisQueue {
	if poll <= 0 {
		poll = time.Second
	}
	return &RedisQueue{client: client, key: key, poll: poll}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job MediaJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("jobs: encode job: %w", err)
	}
	return q.client.Push(ctx, q.key, string(data))
}

func (q *RedisQueue) Dequeue(ctx context.Context) (MediaJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return MediaJob{}, err
		}
		raw, err := q.client.Pop(ctx, q.key, q.poll)
		if redis.IsNil(err) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return MediaJob{}, ctx.Err()
			}
			return MediaJob{}, fmt.Errorf("jobs: dequeue: %w", err)
		}
		var job MediaJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return MediaJob{}, fmt.Errorf("jobs: decode job: %w", err)
		}
		return job, nil
	}
}
