package media

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// defaultCodec is assumed when a file reports no audio codec.
const defaultCodec = "aac"

// CanonicalExt maps an audio codec name to the file extension that
// stream-copied output of that codec should carry.
func CanonicalExt(codec string) string {
	codec = strings.ToLower(strings.TrimSpace(codec))
	switch codec {
	case "":
		return "." + defaultCodec
	case "mp3":
		return ".mp3"
	case "aac":
		return ".aac"
	default:
		return "." + codec
	}
}

func hasExt(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// NewFileStem returns a collision-free base name for files in the shared
// upload directory.
func NewFileStem() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
