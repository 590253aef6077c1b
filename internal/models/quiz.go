package models

import (
	"strconv"
	"time"

	"trivia-service/internal/apperr"
)

type Difficulty string

const (
	DifficultyAny    Difficulty = ""
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type QuestionType string

const (
	QuestionTypeAny      QuestionType = ""
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeBoolean  QuestionType = "boolean"
)

const (
	MaxQuestionCount    = 50
	MaxTimeLimitMinutes = 120
)

// QuizConfig is fixed for the lifetime of a started session. Category 0 means any category.
type QuizConfig struct {
	QuestionCount    int          `bson:"question_count" json:"question_count"`
	Category         int          `bson:"category,omitempty" json:"category,omitempty"`
	Difficulty       Difficulty   `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	QuestionType     QuestionType `bson:"question_type,omitempty" json:"question_type,omitempty"`
	TimeLimitMinutes int          `bson:"time_limit_minutes" json:"time_limit_minutes"`
}

func (c QuizConfig) Validate() error {
	if c.QuestionCount <= 0 || c.QuestionCount > MaxQuestionCount {
		return apperr.Validation("invalid_question_count",
			"Number of questions must be between 1 and "+strconv.Itoa(MaxQuestionCount))
	}
	if c.TimeLimitMinutes <= 0 || c.TimeLimitMinutes > MaxTimeLimitMinutes {
		return apperr.Validation("invalid_time_limit",
			"Time limit must be between 1 and "+strconv.Itoa(MaxTimeLimitMinutes)+" minutes")
	}
	if c.Category < 0 {
		return apperr.Validation("invalid_category", "Unknown category")
	}
	switch c.Difficulty {
	case DifficultyAny, DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return apperr.Validation("invalid_difficulty", "Difficulty must be easy, medium or hard")
	}
	switch c.QuestionType {
	case QuestionTypeAny, QuestionTypeMultiple, QuestionTypeBoolean:
	default:
		return apperr.Validation("invalid_question_type", "Question type must be multiple or boolean")
	}
	return nil
}

func (c QuizConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitMinutes) * time.Minute
}

func (c QuizConfig) TimeLimitSeconds() int {
	return c.TimeLimitMinutes * 60
}
