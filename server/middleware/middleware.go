// Package middleware holds the HTTP middleware of the scribe API: request
// ids, panic recovery, request logging, CORS, body limits, the api_key check
// and per-client rate limiting.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware is the plain net/http middleware signature.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware; the first one is outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// GinWrap runs a Middleware inside the Gin chain.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
	}
}
