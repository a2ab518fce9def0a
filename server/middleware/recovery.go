package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
)

// Recovery turns a handler panic into a 500 and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithContext(c.Request.Context()).Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					logger.FieldPath, c.Request.URL.Path,
					"method", c.Request.Method,
				))
				err := apperrors.Internal(fmt.Errorf("panic: %v", rec))
				err.Message = "Internal server error"
				c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
			}
		}()
		c.Next()
	}
}
