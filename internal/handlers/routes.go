package handlers

import (
	"net/http"

	"trivia-service/internal/logger"
	"trivia-service/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, svc *service.QuizService, log *logger.Logger) {
	identityHandler := NewIdentityHandler(svc, log)
	categoryHandler := NewCategoryHandler(svc)
	sessionHandler := NewSessionHandler(svc, log)

	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		if !svc.Ready() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ready": svc.Ready()})
	})

	public := r.Group("/public/quizz")
	public.GET("/categories", categoryHandler.ListCategories)

	publicIdentity := public.Group("/identity", RequireReady(svc, log))
	{
		publicIdentity.GET("", identityHandler.Current)
		publicIdentity.POST("/login", identityHandler.Login)
	}

	protected := r.Group("/protected/quizz", RequireReady(svc, log), RequireIdentity(svc, log))
	protected.POST("/identity/logout", identityHandler.Logout)

	protectedSession := protected.Group("/session")
	{
		protectedSession.GET("", sessionHandler.GetSession)
		protectedSession.POST("", sessionHandler.StartSession)
		protectedSession.POST("/answer", sessionHandler.SubmitAnswer)
		protectedSession.POST("/resume", sessionHandler.ResumeSession)
		protectedSession.POST("/reset", sessionHandler.ResetSession)
		protectedSession.GET("/timer", sessionHandler.GetTimer)
		protectedSession.GET("/progress", sessionHandler.GetProgress)
		protectedSession.GET("/report", sessionHandler.GetReport)
		protectedSession.GET("/stream", sessionHandler.Stream)
	}
}
