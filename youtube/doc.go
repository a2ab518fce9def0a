// Package youtube resolves a YouTube URL into a transcript.
//
// Native captions are preferred. When a video has none, the Resolver
// fetches its metadata, enforces the duration ceiling, downloads the audio
// through the audio-link API and hands it to the transcription pipeline,
// reporting each step as a progress event.
package youtube
