// Package media prepares source files for transcription. The Normalizer
// guarantees a single audio-only stream and the Segmenter splits long audio
// into ordered, fixed-length chunks. Both shell out to ffprobe and ffmpeg
// through process.Runner and never re-encode.
package media
