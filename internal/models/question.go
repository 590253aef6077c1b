package models

// Question is immutable once fetched. Answers holds the choices in display
// order and contains CorrectAnswer exactly once.
type Question struct {
	Text          string       `bson:"question" json:"question"`
	Category      string       `bson:"category" json:"category"`
	Difficulty    Difficulty   `bson:"difficulty" json:"difficulty"`
	Type          QuestionType `bson:"type" json:"type"`
	CorrectAnswer string       `bson:"correct_answer" json:"correct_answer"`
	Answers       []string     `bson:"answers" json:"answers"`
}

// Category is an entry of the question source's category directory.
type Category struct {
	ID   int    `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}
