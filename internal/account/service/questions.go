package service

// DefaultSecurityQuestions seed the catalog on startup.
var DefaultSecurityQuestions = []string{
	"What was the name of your first pet?",
	"What city were you born in?",
	"What is your mother's maiden name?",
	"What was the name of your primary school?",
	"What was the make of your first car?",
	"What is your favourite book?",
	"What was your childhood nickname?",
	"In what city did your parents meet?",
}
