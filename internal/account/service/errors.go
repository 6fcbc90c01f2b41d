package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrIncorrectAnswers   = errors.New("incorrect answers")
	ErrResetTokenInvalid  = errors.New("reset token invalid or expired")
	ErrDuplicateField     = errors.New("duplicate field")

	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
	ErrNoSecurityQuestions = fmt.Errorf("%w: no security questions configured", ErrNotFound)
)

// DuplicateFieldError names the unique field a signup or profile update
// collided with ("username" or "email").
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s already in use", e.Field)
}

func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateField
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
