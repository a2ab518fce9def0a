// Package errors provides the error taxonomy used across the transcription
// pipeline: structured AppErrors with codes and HTTP status mapping, the
// Reported wrapper that keeps alerts to one per failure, and helpers that
// turn any error into the status/detail pair of a job envelope.
package errors
