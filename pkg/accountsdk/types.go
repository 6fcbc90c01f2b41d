package accountsdk

import "time"

// ============================================================================
// Accounts
// ============================================================================

// User is the public view of an account. It never carries the password hash.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// UserResponse wraps the user returned by signup, login and profile calls.
type UserResponse struct {
	User User `json:"user"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"max=128"`
	Phone    string `json:"phone" validate:"max=32"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"max=128"`
	Phone string `json:"phone" validate:"max=32"`
	Email string `json:"email" validate:"required,email,max=254"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// ============================================================================
// Security questions
// ============================================================================

type SecurityQuestion struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
}

type SecurityQuestionsResponse struct {
	Questions []SecurityQuestion `json:"questions"`
}

// SecurityAnswer is one plaintext answer as submitted by the client.
type SecurityAnswer struct {
	QuestionID int64  `json:"questionId" validate:"required,gt=0"`
	Answer     string `json:"answer" validate:"required,max=256"`
}

// SetSecurityAnswersRequest binds answers to a freshly created account.
type SetSecurityAnswersRequest struct {
	UserID  string           `json:"userId" validate:"required"`
	Answers []SecurityAnswer `json:"answers" validate:"required,min=3,dive"`
}

// UpdateSecurityAnswersRequest replaces the caller's answers.
type UpdateSecurityAnswersRequest struct {
	Answers []SecurityAnswer `json:"answers" validate:"required,min=3,dive"`
}

// ============================================================================
// Recovery
// ============================================================================

type FindUsernameRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type FindUsernameResponse struct {
	Username string `json:"username"`
}

type RecoveryQuestionsRequest struct {
	Username string `json:"username" validate:"required"`
}

type VerifyAnswersRequest struct {
	Username string           `json:"username" validate:"required"`
	Answers  []SecurityAnswer `json:"answers" validate:"required,min=1,dive"`
}

type VerifyAnswersResponse struct {
	ResetToken string    `json:"resetToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ============================================================================
// Common
// ============================================================================

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Field            string `json:"field,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Sessions string `json:"sessions"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
