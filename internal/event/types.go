package event

const (
	IdentityLogin  = "identity.login"
	IdentityLogout = "identity.logout"

	SessionStarted   = "quiz.session.started"
	AnswerRecorded   = "quiz.answer.recorded"
	SessionCompleted = "quiz.session.completed"
	SessionReset     = "quiz.session.reset"
	SessionResumed   = "quiz.session.resumed"
)
