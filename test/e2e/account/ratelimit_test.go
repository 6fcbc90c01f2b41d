//go:build e2e

package account_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitVerifyAnswers checks the strict limit (5 req/min) on the
// answer-guessing endpoint.
func TestRateLimitVerifyAnswers(t *testing.T) {
	client := setupAccountContainerWithDefaultRateLimits(t)
	ctx := t.Context()

	answers := []accountsdk.SecurityAnswer{
		{QuestionID: 1, Answer: "a"},
		{QuestionID: 2, Answer: "b"},
		{QuestionID: 3, Answer: "c"},
	}

	for i := range 5 {
		_, err := client.VerifyAnswers(ctx, "nobody", answers)
		assertAPIError(t, err, accountsdk.ErrorCodeNotFound)
		t.Logf("request %d rejected as expected", i+1)
	}

	_, err := client.VerifyAnswers(ctx, "nobody", answers)
	var apiErr *accountsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, accountsdk.ErrorCodeRateLimited, apiErr.Code)
}
