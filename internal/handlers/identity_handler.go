package handlers

import (
	"net/http"

	"trivia-service/internal/logger"
	"trivia-service/internal/service"

	"github.com/gin-gonic/gin"
)

type IdentityHandler struct {
	Service *service.QuizService
	log     *logger.Logger
}

func NewIdentityHandler(s *service.QuizService, log *logger.Logger) *IdentityHandler {
	return &IdentityHandler{Service: s, log: log}
}

// Login activates a display name and returns the session resumed for it.
func (h *IdentityHandler) Login(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  "invalid_request",
		})
		return
	}

	identity, snapshot, err := h.Service.Login(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"identity": identity,
		"session":  snapshot,
	})
}

func (h *IdentityHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"identity": h.Service.CurrentIdentity(),
		"ready":    h.Service.Ready(),
	})
}

func (h *IdentityHandler) Logout(c *gin.Context) {
	if err := h.Service.Logout(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
