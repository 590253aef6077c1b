package handlers

import (
	"time"

	"trivia-service/internal/apperr"
	"trivia-service/internal/logger"
	"trivia-service/internal/service"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireReady holds requests until the persisted identity has been
// restored.
func RequireReady(svc *service.QuizService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svc.Ready() {
			respondError(c, log, apperr.NotReady("Restoring your previous session, please retry shortly"))
			return
		}
		c.Next()
	}
}

func RequireIdentity(svc *service.QuizService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := svc.CurrentIdentity()
		if current == nil {
			respondError(c, log, apperr.Unauthenticated("Please log in first"))
			return
		}
		c.Set(identityKey, current.Name)
		c.Next()
	}
}

// RequestLogger logs one line per request through zap.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"identity", c.GetString(identityKey),
		)
	}
}
