// Package util holds small helpers shared by the scribe packages: size
// parsing for upload limits, secret masking for the startup summary, and
// config value cleanup.
package util
