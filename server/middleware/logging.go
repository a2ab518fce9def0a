package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/logger"
)

// slowRequest marks requests worth flagging in the log.
const slowRequest = 2 * time.Second

var quietPaths = map[string]bool{
	"/health":    true,
	"/liveness":  true,
	"/readiness": true,
}

// RequestLogger logs each request once it completes, at a level derived from
// the status code. Probe endpoints are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := logger.Fields(
			"method", c.Request.Method,
			logger.FieldPath, c.Request.URL.Path,
			logger.FieldStatus, status,
			logger.FieldDuration, latency.Milliseconds(),
			"client", c.ClientIP(),
		)
		if latency > slowRequest {
			fields["slow"] = true
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("request completed", fields)
		case status >= 400:
			l.Warn("request completed", fields)
		default:
			l.Debug("request completed", fields)
		}
	}
}
