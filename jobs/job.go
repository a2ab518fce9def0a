package jobs

import (
	"time"

	"github.com/google/uuid"
)

// DefaultChunkSeconds is the chunk length used when a job does not set one.
const DefaultChunkSeconds = 1200

// Kind is the source type of a job.
type Kind string

// Job kinds.
const (
	KindAudio   Kind = "audio"
	KindVideo   Kind = "video"
	KindYouTube Kind = "youtube"
)

// MediaJob is one accepted transcription request.
type MediaJob struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	// Source is a local file path for uploads and a URL for YouTube jobs.
	Source       string    `json:"source"`
	ChunkSeconds int       `json:"chunk_seconds"`
	CreatedAt    time.Time `json:"created_at"`
	// UploadSeconds is the time spent receiving the upload.
	UploadSeconds float64 `json:"upload_seconds"`
	// Fallback marks a YouTube job whose captions were already found missing.
	Fallback bool `json:"fallback,omitempty"`
}

// NewJob creates a job with a fresh id.
func NewJob(kind Kind, source string) MediaJob {
	return MediaJob{
		ID:           uuid.NewString(),
		Kind:         kind,
		Source:       source,
		ChunkSeconds: DefaultChunkSeconds,
		CreatedAt:    time.Now(),
	}
}
