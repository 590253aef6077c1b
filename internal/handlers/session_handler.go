package handlers

import (
	"io"
	"net/http"

	"trivia-service/internal/logger"
	"trivia-service/internal/models"
	"trivia-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service *service.QuizService
	log     *logger.Logger
}

func NewSessionHandler(s *service.QuizService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{Service: s, log: log}
}

// GetSession returns the current snapshot of the active identity's session
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Snapshot())
}

// StartSession fetches questions and starts a quiz with them
func (h *SessionHandler) StartSession(c *gin.Context) {
	var cfg models.QuizConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"code":    "invalid_request",
			"details": err.Error(),
		})
		return
	}

	snapshot, err := h.Service.StartQuiz(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// SubmitAnswer records an answer for the current question. question_index is
// optional; when present it must name the current question.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req struct {
		Answer        *string `json:"answer"`
		QuestionIndex *int    `json:"question_index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Answer == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "answer is required",
			"code":  "invalid_request",
		})
		return
	}

	snapshot, err := h.Service.Answer(c.Request.Context(), req.QuestionIndex, *req.Answer)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *SessionHandler) ResumeSession(c *gin.Context) {
	snapshot, err := h.Service.Resume(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *SessionHandler) ResetSession(c *gin.Context) {
	snapshot, err := h.Service.Reset(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *SessionHandler) GetTimer(c *gin.Context) {
	snapshot := h.Service.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":            snapshot.Status,
		"remaining_seconds": snapshot.RemainingSeconds,
		"timer_fraction":    snapshot.Progress.TimerFraction,
		"timer_band":        snapshot.Progress.TimerBand,
	})
}

func (h *SessionHandler) GetProgress(c *gin.Context) {
	snapshot := h.Service.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":   snapshot.Status,
		"progress": snapshot.Progress,
		"score":    h.Service.Score(),
	})
}

func (h *SessionHandler) GetReport(c *gin.Context) {
	report, err := h.Service.Report()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Stream pushes a snapshot event after every change and on every timer tick
// until the client goes away.
func (h *SessionHandler) Stream(c *gin.Context) {
	updates, unsubscribe := h.Service.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snapshot, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snapshot)
			return true
		}
	})
}
