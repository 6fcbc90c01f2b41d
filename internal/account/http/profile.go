package http

import (
	"net/http"

	"github.com/aussiebroadwan/mindful/internal/account/service"
	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/aussiebroadwan/mindful/pkg/httpx"
)

// ProfileHandler serves the identity-asserted surface. Every route is
// mounted behind IdentityMiddleware.
type ProfileHandler struct {
	AccountService  *service.AccountService
	SecurityService *service.SecurityQuestionService
}

// HandleGet godoc
//
//	@Summary		Get Profile
//	@Tags			Profile
//	@Produce		json
//	@Security		UsernameAuth
//	@Success		200	{object}	accountsdk.UserResponse		"the caller"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"unauthorized"
//	@Router			/v1/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserResponse{User: toUser(id.Profile)})
}

// HandleUpdate godoc
//
//	@Summary		Update Profile
//	@Description	Replaces name, phone and email. The email must not belong to another account.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Security		UsernameAuth
//	@Param			request	body		accountsdk.UpdateProfileRequest	true	"New profile values"
//	@Success		200		{object}	accountsdk.UserResponse			"the updated user"
//	@Failure		400		{object}	accountsdk.ErrorResponse		"duplicate_field, validation_error"
//	@Failure		401		{object}	accountsdk.ErrorResponse		"unauthorized"
//	@Router			/v1/profile [put].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req accountsdk.UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p, err := h.AccountService.UpdateProfile(r.Context(), id.Profile.ID, service.ProfileUpdate{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to update profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.UserResponse{User: toUser(p)})
}

// HandleChangePassword godoc
//
//	@Summary		Change Password
//	@Description	Sets a new password after checking the current one.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Security		UsernameAuth
//	@Param			request	body		accountsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	accountsdk.MessageResponse			"password changed"
//	@Failure		400		{object}	accountsdk.ErrorResponse			"validation_error"
//	@Failure		401		{object}	accountsdk.ErrorResponse			"unauthorized, invalid_credentials"
//	@Router			/v1/profile/change-password [post].
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req accountsdk.ChangePasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.AccountService.ChangePassword(r.Context(), id.Profile.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err, "failed to change password")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "password changed"})
}

// HandleSecurityQuestions godoc
//
//	@Summary		My Security Questions
//	@Tags			Profile
//	@Produce		json
//	@Security		UsernameAuth
//	@Success		200	{object}	accountsdk.SecurityQuestionsResponse	"questions the caller answered"
//	@Failure		401	{object}	accountsdk.ErrorResponse				"unauthorized"
//	@Router			/v1/profile/security-questions [get].
func (h *ProfileHandler) HandleSecurityQuestions(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	qs, err := h.SecurityService.QuestionsFor(r.Context(), id.Profile.ID)
	if err != nil {
		writeServiceError(w, r, err, "failed to list security questions")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.SecurityQuestionsResponse{Questions: toQuestions(qs)})
}

// HandleUpdateSecurityAnswers godoc
//
//	@Summary		Replace My Security Answers
//	@Description	Replaces the caller's answer set atomically. At least three distinct questions are required.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Security		UsernameAuth
//	@Param			request	body		accountsdk.UpdateSecurityAnswersRequest	true	"Answers"
//	@Success		200		{object}	accountsdk.MessageResponse				"answers saved"
//	@Failure		400		{object}	accountsdk.ErrorResponse				"validation_error"
//	@Failure		401		{object}	accountsdk.ErrorResponse				"unauthorized"
//	@Router			/v1/profile/security-questions [put].
func (h *ProfileHandler) HandleUpdateSecurityAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req accountsdk.UpdateSecurityAnswersRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.SecurityService.SetAnswers(r.Context(), id.Profile.ID, toAnswerInputs(req.Answers)); err != nil {
		writeServiceError(w, r, err, "failed to update security answers")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "security answers saved"})
}

// HandleDelete godoc
//
//	@Summary		Delete Account
//	@Description	Deletes the caller's account and security answers.
//	@Tags			Profile
//	@Security		UsernameAuth
//	@Success		204	"No Content - account deleted"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"unauthorized"
//	@Router			/v1/profile [delete].
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	if err := h.AccountService.DeleteAccount(r.Context(), id.Profile.ID); err != nil {
		writeServiceError(w, r, err, "failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
