package handlers

import (
	"net/http"

	"trivia-service/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Service *service.QuizService
}

func NewCategoryHandler(s *service.QuizService) *CategoryHandler {
	return &CategoryHandler{Service: s}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, degraded := h.Service.Categories(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"degraded":   degraded,
	})
}
