package transcription

import "context"

// Provider transcribes a single audio file reachable at audioURL.
//
// Segment times in the returned Result are relative to the start of that
// file.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, audioURL string) (*Result, error)
}
