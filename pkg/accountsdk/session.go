package accountsdk

import (
	"context"
	"net/http"
)

// Session calls the identity-asserted routes as one user.
type Session struct {
	client   *Client
	username string
}

func (s *Session) Username() string { return s.username }

func (s *Session) headers() map[string]string {
	return map[string]string{UsernameHeader: s.username}
}

func (s *Session) Profile(ctx context.Context) (*User, error) {
	var out UserResponse
	if err := s.client.call(ctx, http.MethodGet, "/v1/profile", s.headers(), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var out UserResponse
	if err := s.client.call(ctx, http.MethodPut, "/v1/profile", s.headers(), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	req := ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	return s.client.call(ctx, http.MethodPost, "/v1/profile/change-password", s.headers(), req, &MessageResponse{}, http.StatusOK)
}

func (s *Session) SecurityQuestions(ctx context.Context) ([]SecurityQuestion, error) {
	var out SecurityQuestionsResponse
	if err := s.client.call(ctx, http.MethodGet, "/v1/profile/security-questions", s.headers(), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (s *Session) UpdateSecurityAnswers(ctx context.Context, answers []SecurityAnswer) error {
	req := UpdateSecurityAnswersRequest{Answers: answers}
	return s.client.call(ctx, http.MethodPut, "/v1/profile/security-questions", s.headers(), req, &MessageResponse{}, http.StatusOK)
}

func (s *Session) DeleteAccount(ctx context.Context) error {
	return s.client.call(ctx, http.MethodDelete, "/v1/profile", s.headers(), nil, nil, http.StatusNoContent)
}
