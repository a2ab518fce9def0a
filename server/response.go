package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribe/errors"
)

// RespondWithError writes err as an ErrorResponse. Errors that are not
// AppErrors become a generic 500.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.HTTPStatus != 0 {
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	internal := apperrors.Internal(err)
	internal.Message = "Internal server error"
	c.AbortWithStatusJSON(http.StatusInternalServerError, internal.ToResponse())
}

// RespondOK writes a 200 with body as is.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// RespondAccepted writes a 202 with body as is.
func RespondAccepted(c *gin.Context, body any) {
	c.JSON(http.StatusAccepted, body)
}
