//go:build e2e

package account_test

import (
	"testing"

	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

// runRecoveryScenario walks the forgot-username and forgot-password flow.
func runRecoveryScenario(t *testing.T, client *accountsdk.Client) {
	t.Helper()
	ctx := t.Context()
	_, answers := signupAlice(t, client)

	username, err := client.FindUsername(ctx, aliceEmail)
	require.NoError(t, err)
	require.Equal(t, aliceUsername, username)

	questions, err := client.RecoveryQuestions(ctx, username)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	wrong := append([]accountsdk.SecurityAnswer(nil), answers...)
	wrong[2].Answer = "Green"
	_, err = client.VerifyAnswers(ctx, username, wrong)
	assertAPIError(t, err, accountsdk.ErrorCodeIncorrectAnswers)

	answers[0].Answer = "  FLUFFY "
	verified, err := client.VerifyAnswers(ctx, username, answers)
	require.NoError(t, err)
	require.Len(t, verified.ResetToken, 48)

	require.NoError(t, client.ResetPassword(ctx, verified.ResetToken, "NewSecret#2B"))

	err = client.ResetPassword(ctx, verified.ResetToken, "Another#3C")
	assertAPIError(t, err, accountsdk.ErrorCodeResetTokenInvalid)

	_, err = client.Login(ctx, aliceUsername, "NewSecret#2B")
	require.NoError(t, err)
	_, err = client.Login(ctx, aliceUsername, alicePassword)
	assertAPIError(t, err, accountsdk.ErrorCodeInvalidCredentials)
}

func TestRecovery_MemoryStore(t *testing.T) {
	runRecoveryScenario(t, setupAccountContainer(t))
}

func TestRecovery_RedisStore(t *testing.T) {
	client := setupAccountContainerWithRedis(t)

	ready, err := client.Readyz(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Sessions)

	runRecoveryScenario(t, client)
}

func TestRecovery_UnknownAccounts(t *testing.T) {
	client := setupAccountContainer(t)
	ctx := t.Context()

	_, err := client.FindUsername(ctx, "nobody@example.com")
	assertAPIError(t, err, accountsdk.ErrorCodeNotFound)

	_, err = client.RecoveryQuestions(ctx, "nobody")
	assertAPIError(t, err, accountsdk.ErrorCodeNotFound)
}
