// Package resilience holds the fault-tolerance primitives the pipeline is
// built on:
//
//   - Bulkhead: bounds how many chunk transcriptions run at once
//   - Retry: polls collaborators that answer "not ready yet"
//   - CircuitBreaker: stops hammering a collaborator that keeps failing
//   - RateLimiter: paces job submissions to the inference endpoint
package resilience
