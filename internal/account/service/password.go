package service

import "unicode/utf8"

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

func checkPassword(p string) error {
	n := utf8.RuneCountInString(p)
	if n < minPasswordLength {
		return validationError("password must be at least %d characters", minPasswordLength)
	}
	if n > maxPasswordLength {
		return validationError("password must be at most %d characters", maxPasswordLength)
	}
	return nil
}
