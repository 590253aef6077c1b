package handlers

import (
	"net/http"

	"trivia-service/internal/apperr"
	"trivia-service/internal/logger"

	"github.com/gin-gonic/gin"
)

// respondError writes err as {error, code, retryable} with the status that
// matches its kind. Errors outside the taxonomy are logged and hidden.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		log.Error("Unhandled error", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"code":      "internal",
			"retryable": false,
		})
		return
	}
	status := apperr.HTTPStatus(appErr)
	if status >= http.StatusInternalServerError {
		log.Warn("Request failed", "path", c.FullPath(), "code", appErr.Code, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":     appErr.Message,
		"code":      appErr.Code,
		"retryable": appErr.Retryable(),
	})
}
