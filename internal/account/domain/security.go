package domain

// MinSecurityAnswers is the number of distinct answers a user must bind
// before account recovery is usable.
const MinSecurityAnswers = 3

type SecurityQuestion struct {
	ID       int64
	Question string
}

// SecurityAnswer binds a hashed, normalised answer to one question for one
// user. At most one answer exists per (UserID, QuestionID).
type SecurityAnswer struct {
	UserID     string
	QuestionID int64
	AnswerHash string
}
