package accountsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// UsernameHeader carries the asserted identity on protected routes.
const UsernameHeader = "Username"

// Client talks to the public surface of the account service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// As returns a Session that asserts username on every call.
func (c *Client) As(username string) *Session {
	return &Session{client: c, username: username}
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var out UserResponse
	if err := c.call(ctx, http.MethodPost, "/v1/signup", nil, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var out UserResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.call(ctx, http.MethodPost, "/v1/login", nil, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// SecurityQuestions lists the whole question catalog.
func (c *Client) SecurityQuestions(ctx context.Context) ([]SecurityQuestion, error) {
	var out SecurityQuestionsResponse
	if err := c.call(ctx, http.MethodGet, "/v1/security-questions", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// SetSecurityAnswers binds answers to userID, replacing any previous set.
func (c *Client) SetSecurityAnswers(ctx context.Context, userID string, answers []SecurityAnswer) error {
	req := SetSecurityAnswersRequest{UserID: userID, Answers: answers}
	return c.call(ctx, http.MethodPost, "/v1/security-answers", nil, req, &MessageResponse{}, http.StatusOK)
}

func (c *Client) FindUsername(ctx context.Context, email string) (string, error) {
	var out FindUsernameResponse
	req := FindUsernameRequest{Email: email}
	if err := c.call(ctx, http.MethodPost, "/v1/recovery/find-username", nil, req, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.Username, nil
}

// RecoveryQuestions lists the questions bound to username.
func (c *Client) RecoveryQuestions(ctx context.Context, username string) ([]SecurityQuestion, error) {
	var out SecurityQuestionsResponse
	req := RecoveryQuestionsRequest{Username: username}
	if err := c.call(ctx, http.MethodPost, "/v1/recovery/security-questions", nil, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (c *Client) VerifyAnswers(ctx context.Context, username string, answers []SecurityAnswer) (*VerifyAnswersResponse, error) {
	var out VerifyAnswersResponse
	req := VerifyAnswersRequest{Username: username, Answers: answers}
	if err := c.call(ctx, http.MethodPost, "/v1/recovery/verify-answers", nil, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	req := ResetPasswordRequest{Token: token, NewPassword: newPassword}
	return c.call(ctx, http.MethodPatch, "/v1/recovery/reset-password", nil, req, &MessageResponse{}, http.StatusOK)
}

func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/livez", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/readyz", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// call sends in as JSON (when non-nil) and decodes a reply with status
// want into out. Any other status is returned as *APIError.
func (c *Client) call(ctx context.Context, method, path string, headers map[string]string, in, out any, want int) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return parseErrorResponse(resp, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
