package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/util"
)

const defaultMaxBodySize = 2 << 30

// BodySizeLimit caps request bodies at maxSize ("500MB", "2GB").
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}

// GinBodySizeLimit is BodySizeLimit for the Gin chain.
func GinBodySizeLimit(maxSize string) gin.HandlerFunc {
	return GinWrap(BodySizeLimit(maxSize))
}
