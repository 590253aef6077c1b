package scoring

import (
	"testing"

	"trivia-service/internal/models"
)

func questionsWith(correct ...string) []models.Question {
	qs := make([]models.Question, 0, len(correct))
	for _, c := range correct {
		qs = append(qs, models.Question{Text: "Q " + c, CorrectAnswer: c, Answers: []string{c, "X"}})
	}
	return qs
}

func answersWith(values ...string) []models.AnswerRecord {
	as := make([]models.AnswerRecord, 0, len(values))
	for i, v := range values {
		as = append(as, models.AnswerRecord{QuestionIndex: i, Value: v})
	}
	return as
}

func TestCalculate(t *testing.T) {
	testCases := []struct {
		name      string
		questions []models.Question
		answers   []models.AnswerRecord
		expected  models.Score
	}{
		{
			name:      "two of three",
			questions: questionsWith("A", "B", "C"),
			answers:   answersWith("A", "X", "C"),
			expected:  models.Score{Correct: 2, Wrong: 1, Unanswered: 0, Total: 3, Percentage: 66.67},
		},
		{
			name:      "partially answered",
			questions: questionsWith("A", "B", "C", "D", "E"),
			answers:   answersWith("A", "B"),
			expected:  models.Score{Correct: 2, Wrong: 0, Unanswered: 3, Total: 5, Percentage: 40},
		},
		{
			name:      "case sensitive match",
			questions: questionsWith("True"),
			answers:   answersWith("true"),
			expected:  models.Score{Correct: 0, Wrong: 1, Unanswered: 0, Total: 1, Percentage: 0},
		},
		{
			name:      "no questions",
			questions: nil,
			answers:   nil,
			expected:  models.Score{},
		},
		{
			name:      "answer outside question list",
			questions: questionsWith("A"),
			answers:   []models.AnswerRecord{{QuestionIndex: 4, Value: "A"}},
			expected:  models.Score{Correct: 0, Wrong: 1, Unanswered: 0, Total: 1, Percentage: 0},
		},
		{
			name:      "one of six rounds",
			questions: questionsWith("A", "B", "C", "D", "E", "F"),
			answers:   answersWith("A"),
			expected:  models.Score{Correct: 1, Wrong: 0, Unanswered: 5, Total: 6, Percentage: 16.67},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(tc.questions, tc.answers)
			if got != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, got)
			}
		})
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	qs := questionsWith("A", "B", "C")
	as := answersWith("A", "X")

	first := Calculate(qs, as)
	second := Calculate(qs, as)
	if first != second {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
	if len(as) != 2 || as[1].Value != "X" {
		t.Error("Expected answers to be left untouched")
	}
}

func TestGradeFor(t *testing.T) {
	testCases := []struct {
		percentage float64
		letter     string
	}{
		{100, "A+"},
		{90, "A+"},
		{89.99, "A"},
		{80, "A"},
		{79.99, "B"},
		{70, "B"},
		{66.67, "C"},
		{60, "C"},
		{50, "D"},
		{49.99, "F"},
		{0, "F"},
	}

	for _, tc := range testCases {
		if got := GradeFor(tc.percentage); got.Letter != tc.letter {
			t.Errorf("GradeFor(%.2f) expected %s, got %s", tc.percentage, tc.letter, got.Letter)
		}
	}
}

func TestBreakdown(t *testing.T) {
	qs := questionsWith("A", "B", "C")
	items := Breakdown(qs, answersWith("A", "X"))

	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	expected := []models.Outcome{models.OutcomeCorrect, models.OutcomeWrong, models.OutcomeSkipped}
	for i, want := range expected {
		if items[i].Outcome != want {
			t.Errorf("Item %d: expected %s, got %s", i, want, items[i].Outcome)
		}
	}
	if items[1].Chosen != "X" || items[1].CorrectAnswer != "B" {
		t.Errorf("Unexpected wrong item %+v", items[1])
	}
	if items[2].Chosen != "" {
		t.Errorf("Expected skipped item to have no chosen value, got %q", items[2].Chosen)
	}
}

func TestReport(t *testing.T) {
	start := int64(1_700_000_000_000)
	state := &models.SessionState{
		SessionID:    "s-1",
		Config:       &models.QuizConfig{QuestionCount: 3, TimeLimitMinutes: 1},
		Questions:    questionsWith("A", "B", "C"),
		CurrentIndex: 2,
		Answers:      answersWith("A", "B", "C"),
		StartedAtMs:  start,
		Completion:   &models.Completion{Type: models.CompletionAllAnswered, AtMs: start + 42_500},
	}

	report := Report(state, start+600_000)
	if report.Score.Percentage != 100 {
		t.Errorf("Expected 100%%, got %.2f", report.Score.Percentage)
	}
	if report.Grade.Letter != "A+" || !report.Celebrate {
		t.Errorf("Expected celebrated A+, got %+v celebrate=%v", report.Grade, report.Celebrate)
	}
	if report.TimeTakenSeconds != 42 {
		t.Errorf("Expected time taken measured to completion (42s), got %d", report.TimeTakenSeconds)
	}
	if report.CompletionType != models.CompletionAllAnswered {
		t.Errorf("Expected completion type all_answered, got %s", report.CompletionType)
	}

	state.Completion = nil
	state.Answers = answersWith("A")
	state.CurrentIndex = 1
	report = Report(state, start+10_000)
	if report.TimeTakenSeconds != 10 {
		t.Errorf("Expected running time of 10s, got %d", report.TimeTakenSeconds)
	}
	if report.Celebrate {
		t.Error("Expected no celebration at 33%")
	}
}
