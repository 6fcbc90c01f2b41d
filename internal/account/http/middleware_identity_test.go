package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/aussiebroadwan/mindful/internal/account/service"
	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/aussiebroadwan/mindful/pkg/httpx"
	"github.com/stretchr/testify/require"
)

type stubResolver map[string]string

func (s stubResolver) ResolveIdentity(ctx context.Context, username string) (domain.Identity, error) {
	id, ok := s[username]
	if !ok {
		return domain.Identity{}, service.ErrUserNotFound
	}
	return domain.Identity{
		Profile:    domain.Profile{ID: id, Username: username},
		Capability: domain.CapabilityIdentityAsserted,
	}, nil
}

func TestIdentityMiddleware(t *testing.T) {
	resolver := stubResolver{"alice": "u-alice", "bob": "u-bob", "carol": "u-carol"}

	var seen domain.Identity
	var body string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		uid, _ := httpx.UserIDFromContext(r.Context())
		require.Equal(t, seen.Profile.ID, uid)

		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	})
	h := IdentityMiddleware(resolver)(next)

	tests := []struct {
		name   string
		header string
		query  string
		body   string
		want   string
		status int
		desc   string
	}{
		{name: "header", header: "alice", want: "alice", status: http.StatusOK},
		{name: "query", query: "bob", want: "bob", status: http.StatusOK},
		{name: "body", body: `{"username":"carol","name":"C"}`, want: "carol", status: http.StatusOK},
		{name: "header beats query and body", header: "alice", query: "bob", body: `{"username":"carol"}`, want: "alice", status: http.StatusOK},
		{name: "query beats body", query: "bob", body: `{"username":"carol"}`, want: "bob", status: http.StatusOK},
		{name: "none", status: http.StatusUnauthorized, desc: "no username provided"},
		{name: "non-json body", body: "username=alice", status: http.StatusUnauthorized, desc: "no username provided"},
		{name: "unknown", header: "mallory", status: http.StatusUnauthorized, desc: "user not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, body = domain.Identity{}, ""

			target := "/v1/profile"
			if tt.query != "" {
				target += "?username=" + tt.query
			}
			req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set(accountsdk.UsernameHeader, tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code)

			if tt.status != http.StatusOK {
				var resp accountsdk.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				require.Equal(t, accountsdk.ErrorCodeUnauthorized, resp.Error)
				require.Equal(t, tt.desc, resp.ErrorDescription)
				return
			}

			require.Equal(t, tt.want, seen.Profile.Username)
			require.Equal(t, domain.CapabilityIdentityAsserted, seen.Capability)
			require.Equal(t, tt.body, body, "body is restored for the handler")
		})
	}
}

type brokenResolver struct{}

func (brokenResolver) ResolveIdentity(ctx context.Context, username string) (domain.Identity, error) {
	return domain.Identity{}, context.Canceled
}

func TestIdentityMiddleware_ResolverFailure(t *testing.T) {
	h := IdentityMiddleware(brokenResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set(accountsdk.UsernameHeader, "alice")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
