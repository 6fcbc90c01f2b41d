//go:build e2e

package account_test

import (
	"testing"

	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	client := setupAccountContainer(t)

	live, err := client.Livez(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.Readyz(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
}

func TestSignupLoginProfile(t *testing.T) {
	client := setupAccountContainer(t)
	ctx := t.Context()
	alice, _ := signupAlice(t, client)

	_, err := client.Signup(ctx, accountsdk.SignupRequest{Username: aliceUsername, Email: "x@example.com", Password: "Password1"})
	assertAPIError(t, err, accountsdk.ErrorCodeDuplicateField)

	user, err := client.Login(ctx, aliceUsername, alicePassword)
	require.NoError(t, err)
	require.Equal(t, alice.ID, user.ID)

	_, err = client.Login(ctx, aliceUsername, "wrong-password")
	assertAPIError(t, err, accountsdk.ErrorCodeInvalidCredentials)

	session := client.As(aliceUsername)
	profile, err := session.UpdateProfile(ctx, accountsdk.UpdateProfileRequest{Name: "Alice L", Email: aliceEmail})
	require.NoError(t, err)
	require.Equal(t, "Alice L", profile.Name)

	require.NoError(t, session.ChangePassword(ctx, alicePassword, "Changed#9Z"))
	_, err = client.Login(ctx, aliceUsername, "Changed#9Z")
	require.NoError(t, err)

	_, err = client.As("mallory").Profile(ctx)
	assertAPIError(t, err, accountsdk.ErrorCodeUnauthorized)

	require.NoError(t, session.DeleteAccount(ctx))
	_, err = client.Login(ctx, aliceUsername, "Changed#9Z")
	assertAPIError(t, err, accountsdk.ErrorCodeInvalidCredentials)
}
