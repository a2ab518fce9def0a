// Package transcription turns audio into a time-ordered transcript.
//
// A Provider transcribes one publicly reachable audio URL. The Merger
// splits long audio into chunks, fans the chunks out to a Provider under a
// bulkhead and stitches the per-chunk segments back together with each
// chunk's offset applied.
//
// # Backends
//
//   - transcription/runpod: serverless worker reached through submit/poll
//
// # Usage
//
//	m := transcription.NewMerger(segmenter, runpodClient, store, transcription.DefaultMergerConfig(), log)
//	result, err := m.ChunkAndTranscribe(ctx, "uploads/abc.mp3", media.DefaultChunkSeconds)
package transcription
