package models

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

type CompletionType string

const (
	CompletionAllAnswered CompletionType = "all_answered"
	CompletionTimeExpired CompletionType = "time_expired"
)

type Completion struct {
	Type CompletionType `bson:"type" json:"type"`
	AtMs int64          `bson:"at_ms" json:"at_ms"`
}

// SessionState is the persisted state of one quiz attempt. Remaining time is
// never stored: it is derived from StartedAtMs and the configured limit.
type SessionState struct {
	SessionID    string         `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Config       *QuizConfig    `bson:"config" json:"config"`
	Questions    []Question     `bson:"questions" json:"questions"`
	CurrentIndex int            `bson:"current_index" json:"current_index"`
	Answers      []AnswerRecord `bson:"answers" json:"answers"`
	StartedAtMs  int64          `bson:"session_start_ms,omitempty" json:"session_start_ms,omitempty"`
	Completion   *Completion    `bson:"completion,omitempty" json:"completion,omitempty"`
	Loading      bool           `bson:"-" json:"-"`
}

func EpochMs(t time.Time) int64 {
	return t.UnixMilli()
}

func (s *SessionState) IsEmpty() bool {
	return len(s.Questions) == 0
}

func (s *SessionState) AllAnswered() bool {
	return len(s.Questions) > 0 && len(s.Answers) == len(s.Questions)
}

// RemainingSeconds is max(0, limit - floor(elapsed)). A start time in the
// future (clock moved backwards) counts as zero elapsed.
func (s *SessionState) RemainingSeconds(now time.Time) int {
	if s.Config == nil || s.StartedAtMs == 0 {
		return 0
	}
	elapsedMs := EpochMs(now) - s.StartedAtMs
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	remaining := int64(s.Config.TimeLimitSeconds()) - elapsedMs/1000
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

func (s *SessionState) Status(now time.Time) Status {
	if s.IsEmpty() {
		return StatusIdle
	}
	if s.Completion != nil || s.AllAnswered() || s.RemainingSeconds(now) == 0 {
		return StatusComplete
	}
	return StatusInProgress
}

// Validate checks the structural invariants of a non-empty state, typically
// one read back from the store.
func (s *SessionState) Validate() error {
	if s.IsEmpty() {
		if len(s.Answers) > 0 {
			return fmt.Errorf("answers without questions")
		}
		return nil
	}
	if s.Config == nil {
		return fmt.Errorf("questions without config")
	}
	if s.StartedAtMs <= 0 {
		return fmt.Errorf("questions without start time")
	}
	if len(s.Answers) > len(s.Questions) {
		return fmt.Errorf("%d answers for %d questions", len(s.Answers), len(s.Questions))
	}
	for i, a := range s.Answers {
		if a.QuestionIndex != i {
			return fmt.Errorf("answer %d recorded for question %d", i, a.QuestionIndex)
		}
	}
	if s.CurrentIndex < 0 || s.CurrentIndex > len(s.Questions) {
		return fmt.Errorf("current index %d out of range", s.CurrentIndex)
	}
	if s.AllAnswered() {
		if s.CurrentIndex != len(s.Questions)-1 {
			return fmt.Errorf("completed session left at index %d", s.CurrentIndex)
		}
	} else if s.CurrentIndex != len(s.Answers) {
		return fmt.Errorf("current index %d does not follow %d answers", s.CurrentIndex, len(s.Answers))
	}
	return nil
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s *SessionState) Clone() SessionState {
	out := *s
	if s.Config != nil {
		cfg := *s.Config
		out.Config = &cfg
	}
	if s.Completion != nil {
		c := *s.Completion
		out.Completion = &c
	}
	if s.Questions != nil {
		out.Questions = make([]Question, len(s.Questions))
		for i, q := range s.Questions {
			q.Answers = append([]string(nil), q.Answers...)
			out.Questions[i] = q
		}
	}
	if s.Answers != nil {
		out.Answers = append([]AnswerRecord(nil), s.Answers...)
	}
	return out
}
