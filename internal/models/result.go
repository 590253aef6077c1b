package models

type Outcome string

const (
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
	OutcomeSkipped Outcome = "skipped"
)

type Score struct {
	Correct    int     `bson:"correct" json:"correct"`
	Wrong      int     `bson:"wrong" json:"wrong"`
	Unanswered int     `bson:"unanswered" json:"unanswered"`
	Total      int     `bson:"total" json:"total"`
	Percentage float64 `bson:"percentage" json:"percentage"`
}

type Grade struct {
	Letter  string `bson:"letter" json:"letter"`
	Emoji   string `bson:"emoji" json:"emoji"`
	Message string `bson:"message" json:"message"`
}

type QuestionOutcome struct {
	Index         int     `bson:"index" json:"index"`
	Question      string  `bson:"question" json:"question"`
	Category      string  `bson:"category" json:"category"`
	Difficulty    string  `bson:"difficulty" json:"difficulty"`
	Chosen        string  `bson:"chosen,omitempty" json:"chosen,omitempty"`
	CorrectAnswer string  `bson:"correct_answer" json:"correct_answer"`
	Outcome       Outcome `bson:"outcome" json:"outcome"`
}

type QuizReport struct {
	SessionID        string            `bson:"session_id" json:"session_id"`
	Score            Score             `bson:"score" json:"score"`
	Grade            Grade             `bson:"grade" json:"grade"`
	Celebrate        bool              `bson:"celebrate" json:"celebrate"`
	TimeTakenSeconds int               `bson:"time_taken_seconds" json:"time_taken_seconds"`
	CompletionType   CompletionType    `bson:"completion_type,omitempty" json:"completion_type,omitempty"`
	Questions        []QuestionOutcome `bson:"questions" json:"questions"`
}
