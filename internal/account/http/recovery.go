package http

import (
	"net/http"

	"github.com/aussiebroadwan/mindful/internal/account/service"
	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/aussiebroadwan/mindful/pkg/httpx"
)

type RecoveryHandler struct {
	RecoveryService *service.RecoveryService
}

// HandleFindUsername godoc
//
//	@Summary		Find Username
//	@Description	Returns the username registered to an email address.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.FindUsernameRequest	true	"Registered email"
//	@Success		200		{object}	accountsdk.FindUsernameResponse	"username"
//	@Failure		400		{object}	accountsdk.ErrorResponse		"validation_error"
//	@Failure		404		{object}	accountsdk.ErrorResponse		"not_found"
//	@Router			/v1/recovery/find-username [post].
func (h *RecoveryHandler) HandleFindUsername(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.FindUsernameRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	username, err := h.RecoveryService.FindUsername(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err, "failed to find username")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.FindUsernameResponse{Username: username})
}

// HandleSecurityQuestions godoc
//
//	@Summary		Recovery Questions
//	@Description	Returns the questions the user answered, ordered by question id. Answers are never returned.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RecoveryQuestionsRequest		true	"Username"
//	@Success		200		{object}	accountsdk.SecurityQuestionsResponse	"questions"
//	@Failure		404		{object}	accountsdk.ErrorResponse				"not_found"
//	@Router			/v1/recovery/security-questions [post].
func (h *RecoveryHandler) HandleSecurityQuestions(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.RecoveryQuestionsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	qs, err := h.RecoveryService.SecurityQuestions(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, r, err, "failed to list recovery questions")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.SecurityQuestionsResponse{Questions: toQuestions(qs)})
}

// HandleVerifyAnswers godoc
//
//	@Summary		Verify Security Answers
//	@Description	Checks one answer per bound question. When every answer matches, a single-use reset token valid for
//	@Description	ten minutes is returned and also sent to the registered email.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.VerifyAnswersRequest		true	"Username and answers"
//	@Success		200		{object}	accountsdk.VerifyAnswersResponse	"resetToken, expiresAt"
//	@Failure		400		{object}	accountsdk.ErrorResponse			"validation_error"
//	@Failure		401		{object}	accountsdk.ErrorResponse			"incorrect_answers"
//	@Failure		404		{object}	accountsdk.ErrorResponse			"not_found"
//	@Failure		429		{object}	accountsdk.ErrorResponse			"rate_limited"
//	@Router			/v1/recovery/verify-answers [post].
func (h *RecoveryHandler) HandleVerifyAnswers(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.VerifyAnswersRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	sess, err := h.RecoveryService.VerifyAnswers(r.Context(), req.Username, toAnswerInputs(req.Answers))
	if err != nil {
		writeServiceError(w, r, err, "failed to verify security answers")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.VerifyAnswersResponse{
		ResetToken: sess.Token,
		ExpiresAt:  sess.ExpiresAt,
	})
}

// HandleResetPassword godoc
//
//	@Summary		Reset Password
//	@Description	Redeems a reset token and sets a new password. The token is consumed even if the update fails.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	accountsdk.MessageResponse		"password reset"
//	@Failure		400		{object}	accountsdk.ErrorResponse		"reset_token_invalid, validation_error"
//	@Router			/v1/recovery/reset-password [patch].
func (h *RecoveryHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ResetPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.RecoveryService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, r, err, "failed to reset password")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "password reset"})
}
