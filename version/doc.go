// Package version reports the build version of the scribe binaries.
package version
