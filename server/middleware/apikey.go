package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribe/errors"
)

// APIKeyHeader carries the shared API key.
const APIKeyHeader = "api_key"

// APIKeyConfig configures the API key check.
type APIKeyConfig struct {
	// Key is the expected header value. Empty disables the check.
	Key string
	// SkipPaths are path prefixes served without a key.
	SkipPaths []string
}

// APIKey rejects requests whose api_key header does not match cfg.Key with
// 403 "The user is unauthorized".
func APIKey(cfg APIKeyConfig) gin.HandlerFunc {
	want := []byte(cfg.Key)
	return func(c *gin.Context) {
		if len(want) == 0 || skipPath(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}
		got := []byte(c.GetHeader(APIKeyHeader))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			err := apperrors.Forbidden("")
			c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
			return
		}
		c.Next()
	}
}

func skipPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
