// Command scribe runs the transcription service.
//
//	scribe serve                 HTTP API plus an in-process worker pool
//	scribe worker                workers only, draining the shared Redis queue
//	scribe transcribe <file|url> one transcription without the queue
//	scribe version               build information
//
// Configuration is read from ./cmd/scribe/config.yml (or --config), then
// .env, then the process environment.
package main
