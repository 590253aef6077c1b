package models

import (
	"testing"
	"time"

	"trivia-service/internal/apperr"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func startedState(questions, answers int, limitMinutes int) *SessionState {
	s := &SessionState{
		SessionID:   "test-session",
		Config:      &QuizConfig{QuestionCount: questions, TimeLimitMinutes: limitMinutes},
		StartedAtMs: EpochMs(baseTime),
	}
	for i := 0; i < questions; i++ {
		s.Questions = append(s.Questions, Question{
			Text:          "Q",
			CorrectAnswer: "A",
			Answers:       []string{"A", "B"},
		})
	}
	for i := 0; i < answers; i++ {
		s.Answers = append(s.Answers, AnswerRecord{QuestionIndex: i, Value: "A"})
	}
	s.CurrentIndex = answers
	if answers == questions && questions > 0 {
		s.CurrentIndex = questions - 1
	}
	return s
}

func TestRemainingSeconds(t *testing.T) {
	testCases := []struct {
		name     string
		elapsed  time.Duration
		expected int
	}{
		{"just started", 0, 120},
		{"sub-second elapsed floors", 999 * time.Millisecond, 120},
		{"one second", time.Second, 119},
		{"fractional second", 61500 * time.Millisecond, 59},
		{"exactly at limit", 2 * time.Minute, 0},
		{"long after limit", 3 * time.Hour, 0},
		{"clock moved backwards", -5 * time.Second, 120},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := startedState(3, 0, 2)
			got := s.RemainingSeconds(baseTime.Add(tc.elapsed))
			if got != tc.expected {
				t.Errorf("Expected %d seconds remaining, got %d", tc.expected, got)
			}
		})
	}
}

func TestRemainingSecondsWithoutSession(t *testing.T) {
	s := &SessionState{}
	if got := s.RemainingSeconds(baseTime); got != 0 {
		t.Errorf("Expected 0 for an empty session, got %d", got)
	}
}

func TestStatus(t *testing.T) {
	testCases := []struct {
		name     string
		state    *SessionState
		at       time.Time
		expected Status
	}{
		{"empty", &SessionState{}, baseTime, StatusIdle},
		{"fresh", startedState(3, 0, 1), baseTime, StatusInProgress},
		{"partially answered", startedState(3, 2, 1), baseTime.Add(30 * time.Second), StatusInProgress},
		{"all answered", startedState(3, 3, 1), baseTime, StatusComplete},
		{"time expired", startedState(3, 1, 1), baseTime.Add(time.Minute), StatusComplete},
		{"completion recorded", func() *SessionState {
			s := startedState(3, 1, 1)
			s.Completion = &Completion{Type: CompletionTimeExpired}
			return s
		}(), baseTime, StatusComplete},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.Status(tc.at); got != tc.expected {
				t.Errorf("Expected status %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(s *SessionState)
		wantErr bool
	}{
		{"valid in progress", func(s *SessionState) {}, false},
		{"missing config", func(s *SessionState) { s.Config = nil }, true},
		{"missing start", func(s *SessionState) { s.StartedAtMs = 0 }, true},
		{"index gap", func(s *SessionState) { s.Answers[1].QuestionIndex = 2 }, true},
		{"pointer ahead of answers", func(s *SessionState) { s.CurrentIndex = 3 }, true},
		{"negative pointer", func(s *SessionState) { s.CurrentIndex = -1 }, true},
		{"too many answers", func(s *SessionState) {
			for i := 2; i < 6; i++ {
				s.Answers = append(s.Answers, AnswerRecord{QuestionIndex: i})
			}
		}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := startedState(4, 2, 5)
			tc.mutate(s)
			err := s.Validate()
			if tc.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}

	if err := startedState(3, 3, 1).Validate(); err != nil {
		t.Errorf("Expected completed state to validate, got %v", err)
	}
	if err := (&SessionState{}).Validate(); err != nil {
		t.Errorf("Expected empty state to validate, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := startedState(2, 1, 1)
	c := s.Clone()

	c.Questions[0].Answers[0] = "changed"
	c.Answers[0].Value = "changed"
	c.Config.TimeLimitMinutes = 99

	if s.Questions[0].Answers[0] != "A" {
		t.Error("Expected question choices to be copied")
	}
	if s.Answers[0].Value != "A" {
		t.Error("Expected answers to be copied")
	}
	if s.Config.TimeLimitMinutes != 1 {
		t.Error("Expected config to be copied")
	}
}

func TestQuizConfigValidate(t *testing.T) {
	testCases := []struct {
		name     string
		config   QuizConfig
		wantCode string
	}{
		{"valid minimal", QuizConfig{QuestionCount: 10, TimeLimitMinutes: 10}, ""},
		{"valid full", QuizConfig{QuestionCount: 5, Category: 9, Difficulty: DifficultyHard, QuestionType: QuestionTypeBoolean, TimeLimitMinutes: 5}, ""},
		{"zero questions", QuizConfig{QuestionCount: 0, TimeLimitMinutes: 10}, "invalid_question_count"},
		{"too many questions", QuizConfig{QuestionCount: MaxQuestionCount + 1, TimeLimitMinutes: 10}, "invalid_question_count"},
		{"zero time", QuizConfig{QuestionCount: 5}, "invalid_time_limit"},
		{"negative category", QuizConfig{QuestionCount: 5, TimeLimitMinutes: 5, Category: -1}, "invalid_category"},
		{"bad difficulty", QuizConfig{QuestionCount: 5, TimeLimitMinutes: 5, Difficulty: "extreme"}, "invalid_difficulty"},
		{"bad type", QuizConfig{QuestionCount: 5, TimeLimitMinutes: 5, QuestionType: "essay"}, "invalid_question_type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.wantCode == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			appErr, ok := apperr.As(err)
			if !ok || appErr.Kind != apperr.KindValidation {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if appErr.Code != tc.wantCode {
				t.Errorf("Expected code %s, got %s", tc.wantCode, appErr.Code)
			}
		})
	}
}
