package http

import (
	"net/http"

	"github.com/aussiebroadwan/mindful/internal/account/service"
	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/aussiebroadwan/mindful/pkg/httpx"
)

type SecurityQuestionsHandler struct {
	SecurityService *service.SecurityQuestionService
}

// HandleCatalog godoc
//
//	@Summary		List Security Questions
//	@Description	Returns the full catalog of security questions a user may answer.
//	@Tags			Security Questions
//	@Produce		json
//	@Success		200	{object}	accountsdk.SecurityQuestionsResponse	"questions"
//	@Failure		500	{object}	accountsdk.ErrorResponse				"server_error"
//	@Router			/v1/security-questions [get].
func (h *SecurityQuestionsHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	qs, err := h.SecurityService.Catalog(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list security questions")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.SecurityQuestionsResponse{Questions: toQuestions(qs)})
}

// HandleSetAnswers godoc
//
//	@Summary		Set Security Answers
//	@Description	Binds at least three answers to distinct questions for a user, replacing any previous set atomically.
//	@Description	Answers are case and whitespace insensitive.
//	@Tags			Security Questions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.SetSecurityAnswersRequest	true	"User id and answers"
//	@Success		200		{object}	accountsdk.MessageResponse				"answers saved"
//	@Failure		400		{object}	accountsdk.ErrorResponse				"validation_error"
//	@Failure		404		{object}	accountsdk.ErrorResponse				"not_found"
//	@Failure		500		{object}	accountsdk.ErrorResponse				"server_error"
//	@Router			/v1/security-answers [post].
func (h *SecurityQuestionsHandler) HandleSetAnswers(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.SetSecurityAnswersRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.SecurityService.SetAnswers(r.Context(), req.UserID, toAnswerInputs(req.Answers)); err != nil {
		writeServiceError(w, r, err, "failed to set security answers")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "security answers saved"})
}
