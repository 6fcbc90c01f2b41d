package http

import (
	"net/http"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/aussiebroadwan/mindful/internal/account/service"
	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/aussiebroadwan/mindful/pkg/httpx"
)

type AccountHandler struct {
	AccountService *service.AccountService
}

// HandleSignup godoc
//
//	@Summary		Create Account
//	@Description	Registers a new user. Username and email must both be unused; the conflicting field is reported.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.SignupRequest	true	"New account"
//	@Success		201		{object}	accountsdk.UserResponse		"the created user"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"duplicate_field, validation_error"
//	@Failure		429		{object}	accountsdk.ErrorResponse	"rate_limited"
//	@Failure		500		{object}	accountsdk.ErrorResponse	"server_error"
//	@Router			/v1/signup [post].
func (h *AccountHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.SignupRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p, err := h.AccountService.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to sign up")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accountsdk.UserResponse{User: toUser(p)})
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	Verifies a username and password. Unknown usernames and wrong passwords are indistinguishable.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	accountsdk.UserResponse		"the authenticated user"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"invalid_credentials"
//	@Failure		429		{object}	accountsdk.ErrorResponse	"rate_limited"
//	@Router			/v1/login [post].
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	id, err := h.AccountService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "failed to log in")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserResponse{User: toUser(id.Profile)})
}

func toUser(p domain.Profile) accountsdk.User {
	return accountsdk.User{
		ID:       p.ID,
		Username: p.Username,
		Email:    p.Email,
		Name:     p.Name,
		Phone:    p.Phone,
	}
}

func toQuestions(qs []domain.SecurityQuestion) []accountsdk.SecurityQuestion {
	out := make([]accountsdk.SecurityQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, accountsdk.SecurityQuestion{ID: q.ID, Question: q.Question})
	}
	return out
}

func toAnswerInputs(as []accountsdk.SecurityAnswer) []service.AnswerInput {
	out := make([]service.AnswerInput, 0, len(as))
	for _, a := range as {
		out = append(out, service.AnswerInput{QuestionID: a.QuestionID, Answer: a.Answer})
	}
	return out
}
