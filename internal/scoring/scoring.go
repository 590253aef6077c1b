// Package scoring derives quiz results from a question list and its answer log.
// Every function here is pure.
package scoring

import (
	"math"

	"trivia-service/internal/models"
)

// CelebrationThreshold is the percentage from which a result is celebrated.
const CelebrationThreshold = 70.0

type band struct {
	min   float64
	grade models.Grade
}

var bands = []band{
	{90, models.Grade{Letter: "A+", Emoji: "🏆", Message: "Outstanding!"}},
	{80, models.Grade{Letter: "A", Emoji: "🌟", Message: "Excellent!"}},
	{70, models.Grade{Letter: "B", Emoji: "👍", Message: "Great Job!"}},
	{60, models.Grade{Letter: "C", Emoji: "👌", Message: "Good Effort!"}},
	{50, models.Grade{Letter: "D", Emoji: "💪", Message: "Keep Trying!"}},
}

var failing = models.Grade{Letter: "F", Emoji: "📚", Message: "Practice More!"}

// Calculate scores answers against questions. An answer pointing outside the
// question list counts as wrong. With no questions the percentage is 0.
func Calculate(questions []models.Question, answers []models.AnswerRecord) models.Score {
	score := models.Score{Total: len(questions)}
	for _, a := range answers {
		if isCorrect(questions, a) {
			score.Correct++
		} else {
			score.Wrong++
		}
	}
	score.Unanswered = score.Total - len(answers)
	if score.Unanswered < 0 {
		score.Unanswered = 0
	}
	if score.Total > 0 {
		score.Percentage = round2(float64(score.Correct) / float64(score.Total) * 100)
	}
	return score
}

// GradeFor maps a percentage to its band. Lower bounds are inclusive.
func GradeFor(percentage float64) models.Grade {
	for _, b := range bands {
		if percentage >= b.min {
			return b.grade
		}
	}
	return failing
}

// Breakdown lists every question with the answer given for it, if any.
func Breakdown(questions []models.Question, answers []models.AnswerRecord) []models.QuestionOutcome {
	chosen := make(map[int]string, len(answers))
	for _, a := range answers {
		if _, seen := chosen[a.QuestionIndex]; !seen {
			chosen[a.QuestionIndex] = a.Value
		}
	}

	out := make([]models.QuestionOutcome, 0, len(questions))
	for i, q := range questions {
		item := models.QuestionOutcome{
			Index:         i,
			Question:      q.Text,
			Category:      q.Category,
			Difficulty:    string(q.Difficulty),
			CorrectAnswer: q.CorrectAnswer,
			Outcome:       models.OutcomeSkipped,
		}
		if value, ok := chosen[i]; ok {
			item.Chosen = value
			item.Outcome = models.OutcomeWrong
			if value == q.CorrectAnswer {
				item.Outcome = models.OutcomeCorrect
			}
		}
		out = append(out, item)
	}
	return out
}

// Report assembles the full result view of a session at the given instant.
func Report(state *models.SessionState, nowMs int64) models.QuizReport {
	score := Calculate(state.Questions, state.Answers)
	report := models.QuizReport{
		SessionID: state.SessionID,
		Score:     score,
		Grade:     GradeFor(score.Percentage),
		Celebrate: score.Total > 0 && score.Percentage >= CelebrationThreshold,
		Questions: Breakdown(state.Questions, state.Answers),
	}

	end := nowMs
	if state.Completion != nil {
		report.CompletionType = state.Completion.Type
		end = state.Completion.AtMs
	}
	if state.StartedAtMs > 0 && end > state.StartedAtMs {
		report.TimeTakenSeconds = int((end - state.StartedAtMs) / 1000)
	}
	return report
}

func isCorrect(questions []models.Question, a models.AnswerRecord) bool {
	if a.QuestionIndex < 0 || a.QuestionIndex >= len(questions) {
		return false
	}
	return a.Value == questions[a.QuestionIndex].CorrectAnswer
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
