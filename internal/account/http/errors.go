package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/mindful/internal/account/service"
	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/aussiebroadwan/mindful/pkg/httpx"
	"github.com/aussiebroadwan/mindful/pkg/slogx"
	"github.com/aussiebroadwan/mindful/pkg/validatex"
)

// writeServiceError maps a service error onto its API error. Anything not
// recognised is logged with msg and reported as server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var dup *service.DuplicateFieldError

	switch {
	case errors.As(err, &dup):
		e := *accountsdk.ErrDuplicateField
		e.Field = dup.Field
		e.Description = dup.Error()
		e.WriteError(w)
	case errors.Is(err, service.ErrValidation):
		accountsdk.ErrValidation.WithDescription(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		accountsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrIncorrectAnswers):
		accountsdk.ErrIncorrectAnswers.WriteError(w)
	case errors.Is(err, service.ErrResetTokenInvalid):
		accountsdk.ErrResetTokenInvalid.WriteError(w)
	case errors.Is(err, service.ErrNoSecurityQuestions):
		accountsdk.ErrNotFound.WithDescription("no security questions configured").WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		accountsdk.ErrNotFound.WithDescription("user not found").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error(msg, "err", err)
		accountsdk.ErrServerError.WriteError(w)
	}
}

// decodeRequest reads and validates the JSON body into v. On failure it
// writes the validation error and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	err := httpx.DecodeJSON(r, v)
	if err == nil {
		return true
	}

	var ve *validatex.Error
	switch {
	case errors.As(err, &ve):
		accountsdk.ErrValidation.WithDescription(ve.Error()).WriteError(w)
	case errors.Is(err, httpx.ErrMalformedBody):
		accountsdk.ErrValidation.WithDescription("request body must be valid JSON").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("failed to validate request", "err", err)
		accountsdk.ErrServerError.WriteError(w)
	}
	return false
}
