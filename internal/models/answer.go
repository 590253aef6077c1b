package models

// AnswerRecord binds one chosen value to a question index. Records are
// append-only and QuestionIndex values are contiguous from 0.
type AnswerRecord struct {
	QuestionIndex int    `bson:"question_index" json:"question_index"`
	Value         string `bson:"answer" json:"answer"`
	AnsweredAtMs  int64  `bson:"answered_at_ms" json:"answered_at_ms"`
}
