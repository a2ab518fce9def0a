// Package redis provides a Redis client component with connection pooling,
// lifecycle management and health checks.
//
// It backs the job status store and the job queue:
//
//	store := redis.NewTypedStore[jobs.Record](client, "scribe:job")
//	client.Push(ctx, "scribe:queue", payload)
//	payload, err := client.Pop(ctx, "scribe:queue", time.Second)
package redis
