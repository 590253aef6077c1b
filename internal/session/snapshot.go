package session

import (
	"time"

	"trivia-service/internal/models"
)

type TimerBand string

const (
	TimerOK       TimerBand = "ok"
	TimerWarning  TimerBand = "warning"
	TimerCritical TimerBand = "critical"
)

// QuestionView is a question as shown to the player, without its answer.
type QuestionView struct {
	Index      int                 `json:"index"`
	Text       string              `json:"question"`
	Category   string              `json:"category"`
	Difficulty models.Difficulty   `json:"difficulty"`
	Type       models.QuestionType `json:"type"`
	Answers    []string            `json:"answers"`
}

type Progress struct {
	QuestionNumber int       `json:"question_number"`
	TotalQuestions int       `json:"total_questions"`
	Answered       int       `json:"answered"`
	Remaining      int       `json:"remaining"`
	TimerFraction  float64   `json:"timer_fraction"`
	TimerBand      TimerBand `json:"timer_band,omitempty"`
}

// Snapshot is a read-only view of the machine at one instant.
type Snapshot struct {
	Owner            string                `json:"owner,omitempty"`
	SessionID        string                `json:"session_id,omitempty"`
	Status           models.Status         `json:"status"`
	Loading          bool                  `json:"loading"`
	Config           *models.QuizConfig    `json:"config,omitempty"`
	CurrentIndex     int                   `json:"current_index"`
	CurrentQuestion  *QuestionView         `json:"current_question,omitempty"`
	Answers          []models.AnswerRecord `json:"answers"`
	StartedAtMs      int64                 `json:"session_start_ms,omitempty"`
	RemainingSeconds int                   `json:"remaining_seconds"`
	Progress         Progress              `json:"progress"`
	Completion       *models.Completion    `json:"completion,omitempty"`
}

func bandFor(fraction float64) TimerBand {
	switch {
	case fraction > 0.5:
		return TimerOK
	case fraction > 0.2:
		return TimerWarning
	default:
		return TimerCritical
	}
}

func buildSnapshot(owner string, s *models.SessionState, now time.Time) Snapshot {
	state := s.Clone()
	snap := Snapshot{
		Owner:        owner,
		SessionID:    state.SessionID,
		Status:       state.Status(now),
		Loading:      state.Loading,
		Config:       state.Config,
		CurrentIndex: state.CurrentIndex,
		Answers:      state.Answers,
		StartedAtMs:  state.StartedAtMs,
		Completion:   state.Completion,
	}
	if snap.Answers == nil {
		snap.Answers = []models.AnswerRecord{}
	}
	if state.IsEmpty() {
		return snap
	}

	snap.RemainingSeconds = state.RemainingSeconds(now)
	total := len(state.Questions)
	snap.Progress = Progress{
		QuestionNumber: state.CurrentIndex + 1,
		TotalQuestions: total,
		Answered:       len(state.Answers),
		Remaining:      total - len(state.Answers),
	}
	if limit := state.Config.TimeLimitSeconds(); limit > 0 {
		snap.Progress.TimerFraction = float64(snap.RemainingSeconds) / float64(limit)
		snap.Progress.TimerBand = bandFor(snap.Progress.TimerFraction)
	}

	if snap.Status == models.StatusInProgress {
		q := state.Questions[state.CurrentIndex]
		snap.CurrentQuestion = &QuestionView{
			Index:      state.CurrentIndex,
			Text:       q.Text,
			Category:   q.Category,
			Difficulty: q.Difficulty,
			Type:       q.Type,
			Answers:    q.Answers,
		}
	}
	return snap
}
