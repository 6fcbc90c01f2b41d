package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/aussiebroadwan/mindful/internal/account/recovery"
	"github.com/aussiebroadwan/mindful/internal/account/store/drivers/sqlite"
	"github.com/aussiebroadwan/mindful/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *sqlite.Store
	hasher   *cryptox.Hasher
	sessions *recovery.MemoryStore
	accounts *AccountService
	security *SecurityQuestionService
	recovery *RecoveryService
	catalog  []domain.SecurityQuestion
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "account.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	h, err := cryptox.NewHasher(cryptox.HasherConfig{
		Argon2: cryptox.Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1},
		Pepper: "test-pepper",
	})
	require.NoError(t, err)

	f := &fixture{
		store:    st,
		hasher:   h,
		sessions: recovery.NewMemoryStore(recovery.Options{}),
	}
	f.accounts = &AccountService{Store: st, Hasher: h}
	f.security = &SecurityQuestionService{Store: st, Hasher: h}
	f.recovery = &RecoveryService{Store: st, Hasher: h, Sessions: f.sessions}

	require.NoError(t, f.security.Seed(ctx, DefaultSecurityQuestions))
	f.catalog, err = f.security.Catalog(ctx)
	require.NoError(t, err)
	return f
}

// signupAlice registers alice with answers Fluffy, Sydney, Blue to the
// first three catalog questions.
func (f *fixture) signupAlice(t *testing.T) domain.Profile {
	t.Helper()
	ctx := context.Background()

	p, err := f.accounts.Signup(ctx, SignupInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Secret#1A",
		Name:     "Alice",
		Phone:    "0400000000",
	})
	require.NoError(t, err)
	require.NoError(t, f.security.SetAnswers(ctx, p.ID, f.aliceAnswers()))
	return p
}

func (f *fixture) aliceAnswers() []AnswerInput {
	return []AnswerInput{
		{QuestionID: f.catalog[0].ID, Answer: "Fluffy"},
		{QuestionID: f.catalog[1].ID, Answer: "Sydney"},
		{QuestionID: f.catalog[2].ID, Answer: "Blue"},
	}
}

// recordingNotifier captures deliveries for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, to, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[string]string)
	}
	n.sent[to] = token
	return n.err
}

func (n *recordingNotifier) tokenFor(to string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[to]
}
