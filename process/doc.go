// Package process runs external tools such as ffmpeg and ffprobe with
// context cancellation that tears down the whole process group.
package process
