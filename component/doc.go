// Package component defines the lifecycle contract shared by the scribe
// infrastructure pieces (HTTP server, Redis, Kafka, storage, worker pool).
//
// A Registry starts components in registration order and stops them in
// reverse, so register dependencies first.
package component
