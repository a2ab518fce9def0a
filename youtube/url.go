package youtube

import (
	"net/url"
	"regexp"
	"strings"

	apperrors "github.com/kbukum/scribe/errors"
)

var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^https?://youtu\.be/[\w-]+`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/shorts/[\w-]+`),
	regexp.MustCompile(`^https?://youtube\.com/live/[\w-]+`),
	regexp.MustCompile(`^https?://m\.youtube\.com/watch\?v=[\w-]+`),
}

// InvalidURLMessage is the status reported for a URL IsValidURL rejects.
const InvalidURLMessage = "Invalid YouTube URL. Please provide a valid video or Shorts link."

// IsValidURL reports whether raw is a watch, youtu.be, shorts, live or
// mobile watch link.
func IsValidURL(raw string) bool {
	for _, p := range urlPatterns {
		if p.MatchString(raw) {
			return true
		}
	}
	return false
}

// ExtractVideoID returns the video id of a youtu.be, /shorts/, /live/ or ?v= link.
func ExtractVideoID(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", apperrors.Validation("Not a valid YouTube URL.")
	}
	host := strings.ToLower(u.Host)

	switch {
	case strings.Contains(host, "youtu.be"):
		id := strings.TrimLeft(u.Path, "/")
		if id == "" {
			return "", apperrors.Validation("No video ID found in youtu.be URL.")
		}
		return id, nil

	case strings.Contains(host, "youtube.com"):
		if strings.HasPrefix(u.Path, "/shorts/") {
			parts := strings.Split(u.Path, "/")
			if len(parts) < 3 || parts[1] != "shorts" {
				return "", apperrors.Validation("Unexpected path format for YouTube Shorts URL.")
			}
			if parts[2] == "" {
				return "", apperrors.Validation("No video ID found in shorts path.")
			}
			return parts[2], nil
		}
		if id, ok := strings.CutPrefix(u.Path, "/live/"); ok {
			id = strings.TrimSuffix(id, "/")
			if id == "" || strings.Contains(id, "/") {
				return "", apperrors.Validation("No video ID found in live path.")
			}
			return id, nil
		}
		if v := u.Query().Get("v"); v != "" {
			return v, nil
		}
		return "", apperrors.Validation("No video ID found in youtube.com URL parameters.")
	}

	return "", apperrors.Validation("Not a valid YouTube URL.")
}
