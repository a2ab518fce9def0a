// Package jobs tracks transcription jobs from acceptance to a terminal
// status.
//
// A MediaJob is created when a request is accepted, queued, picked up by a
// Pool worker and run through a Reporter, which times it, builds the result
// envelope, alerts failures once and publishes the final status.
package jobs
