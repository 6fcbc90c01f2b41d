package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/aussiebroadwan/mindful/internal/account/service"
	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/aussiebroadwan/mindful/pkg/httpx"
	"github.com/aussiebroadwan/mindful/pkg/slogx"
)

type identityCtxKey struct{}

// IdentityResolver looks up an asserted username.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, username string) (domain.Identity, error)
}

// IdentityMiddleware resolves the caller from the Username header, then the
// username query parameter, then the username field of a JSON body. The
// user must exist; nothing else is checked, so the request carries only
// domain.CapabilityIdentityAsserted.
func IdentityMiddleware(resolver IdentityResolver) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			username := assertedUsername(r)
			if username == "" {
				accountsdk.ErrNoUsernameProvided.WriteError(w)
				return
			}

			id, err := resolver.ResolveIdentity(ctx, username)
			if errors.Is(err, service.ErrNotFound) {
				log.Warn("identity rejected: unknown username")
				accountsdk.ErrUnknownUser.WriteError(w)
				return
			}
			if err != nil {
				log.Error("failed to resolve identity", "err", err)
				accountsdk.ErrServerError.WriteError(w)
				return
			}

			ctx = context.WithValue(ctx, identityCtxKey{}, id)
			ctx = httpx.WithUserID(ctx, id.Profile.ID)
			ctx = slogx.With(ctx, "user_id", id.Profile.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity attached by IdentityMiddleware.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return id, ok
}

func assertedUsername(r *http.Request) string {
	if u := r.Header.Get(accountsdk.UsernameHeader); u != "" {
		return u
	}
	if u := r.URL.Query().Get("username"); u != "" {
		return u
	}
	return httpx.PeekJSONField(r, "username")
}
