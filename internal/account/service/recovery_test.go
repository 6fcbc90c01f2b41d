package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/mindful/internal/account/recovery"
	"github.com/stretchr/testify/require"
)

func TestFindUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	name, err := f.recovery.FindUsername(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice", name)

	_, err = f.recovery.FindUsername(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecoverySecurityQuestions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	qs, err := f.recovery.SecurityQuestions(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, f.catalog[:3], qs)

	_, err = f.recovery.SecurityQuestions(ctx, "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.accounts.Signup(ctx, SignupInput{Username: "bob", Email: "bob@example.com", Password: "Password1"})
	require.NoError(t, err)
	_, err = f.recovery.SecurityQuestions(ctx, "bob")
	require.ErrorIs(t, err, ErrNoSecurityQuestions)
}

func TestRecovery_FullFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	answers := f.aliceAnswers()
	answers[0].Answer = "  fluffy " // normalised before comparison

	sess, err := f.recovery.VerifyAnswers(ctx, "alice", answers)
	require.NoError(t, err)
	require.Len(t, sess.Token, recovery.TokenLength)

	require.NoError(t, f.recovery.ResetPassword(ctx, sess.Token, "NewSecret#2B"))

	_, err = f.accounts.Login(ctx, "alice", "NewSecret#2B")
	require.NoError(t, err)
	_, err = f.accounts.Login(ctx, "alice", "Secret#1A")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = f.recovery.ResetPassword(ctx, sess.Token, "Third#3C!")
	require.ErrorIs(t, err, ErrResetTokenInvalid, "tokens are single use")
}

func TestVerifyAnswers_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	wrongOne := f.aliceAnswers()
	wrongOne[2].Answer = "Green"

	unbound := f.aliceAnswers()
	unbound[1].QuestionID = f.catalog[5].ID

	dup := f.aliceAnswers()
	dup[1].QuestionID = dup[0].QuestionID

	tests := []struct {
		name     string
		username string
		answers  []AnswerInput
		err      error
	}{
		{"one wrong answer", "alice", wrongOne, ErrIncorrectAnswers},
		{"unbound question", "alice", unbound, ErrIncorrectAnswers},
		{"missing answer", "alice", f.aliceAnswers()[:2], ErrValidation},
		{"duplicate question", "alice", dup, ErrValidation},
		{"unknown user", "nobody", f.aliceAnswers(), ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.recovery.VerifyAnswers(ctx, tt.username, tt.answers)
			require.ErrorIs(t, err, tt.err)
			require.Zero(t, f.sessions.Len(), "no session issued")
		})
	}
}

func TestResetPassword_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	sess, err := f.recovery.VerifyAnswers(ctx, "alice", f.aliceAnswers())
	require.NoError(t, err)

	require.ErrorIs(t, f.recovery.ResetPassword(ctx, "not-a-token", "NewSecret#2B"), ErrResetTokenInvalid)

	// A weak password is refused without burning the token.
	require.ErrorIs(t, f.recovery.ResetPassword(ctx, sess.Token, "short"), ErrValidation)
	require.NoError(t, f.recovery.ResetPassword(ctx, sess.Token, "NewSecret#2B"))
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	f.recovery.Sessions = recovery.NewMemoryStore(recovery.Options{Now: clock})

	sess, err := f.recovery.VerifyAnswers(ctx, "alice", f.aliceAnswers())
	require.NoError(t, err)
	require.Equal(t, now.Add(recovery.DefaultTTL), sess.ExpiresAt)

	mu.Lock()
	now = now.Add(recovery.DefaultTTL + time.Second)
	mu.Unlock()

	require.ErrorIs(t, f.recovery.ResetPassword(ctx, sess.Token, "NewSecret#2B"), ErrResetTokenInvalid)
	_, err = f.accounts.Login(ctx, "alice", "Secret#1A")
	require.NoError(t, err)
}

func TestResetPassword_ConcurrentRedemption(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	sess, err := f.recovery.VerifyAnswers(ctx, "alice", f.aliceAnswers())
	require.NoError(t, err)

	const workers = 8
	var wins, rejected atomic.Int32
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.recovery.ResetPassword(ctx, sess.Token, "NewSecret#2B")
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrResetTokenInvalid):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, wins.Load())
	require.EqualValues(t, workers-1, rejected.Load())
}

func TestVerifyAnswers_Notifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	n := &recordingNotifier{}
	f.recovery.Notifier = n

	sess, err := f.recovery.VerifyAnswers(ctx, "alice", f.aliceAnswers())
	require.NoError(t, err)
	require.NoError(t, f.recovery.Wait(ctx))
	require.Equal(t, sess.Token, n.tokenFor("alice@example.com"))
}

func TestVerifyAnswers_NotifierFailureIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	f.recovery.Notifier = &recordingNotifier{err: errors.New("smtp down")}

	sess, err := f.recovery.VerifyAnswers(ctx, "alice", f.aliceAnswers())
	require.NoError(t, err)
	require.NoError(t, f.recovery.Wait(ctx))

	require.NoError(t, f.recovery.ResetPassword(ctx, sess.Token, "NewSecret#2B"))
}

// blockingNotifier holds every delivery until ctx is done or release closes.
type blockingNotifier struct {
	release chan struct{}
	errs    chan error
}

func newBlockingNotifier(t *testing.T) *blockingNotifier {
	n := &blockingNotifier{release: make(chan struct{}), errs: make(chan error, 1)}
	t.Cleanup(func() { close(n.release) })
	return n
}

func (n *blockingNotifier) Send(ctx context.Context, to, token string) error {
	select {
	case <-ctx.Done():
		n.errs <- ctx.Err()
		return ctx.Err()
	case <-n.release:
		return nil
	}
}

func TestVerifyAnswers_NotifyTimeout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	n := newBlockingNotifier(t)
	f.recovery.Notifier = n
	f.recovery.NotifyTimeout = 50 * time.Millisecond

	_, err := f.recovery.VerifyAnswers(ctx, "alice", f.aliceAnswers())
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, f.recovery.Wait(waitCtx))
	require.ErrorIs(t, <-n.errs, context.DeadlineExceeded)
}

// ignoringNotifier never returns until released, whatever its context says.
type ignoringNotifier struct{ release chan struct{} }

func (n ignoringNotifier) Send(ctx context.Context, to, token string) error {
	<-n.release
	return nil
}

func TestWait_BoundedByContext(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupAlice(t)

	n := ignoringNotifier{release: make(chan struct{})}
	t.Cleanup(func() { close(n.release) })
	f.recovery.Notifier = n

	_, err := f.recovery.VerifyAnswers(ctx, "alice", f.aliceAnswers())
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.ErrorIs(t, f.recovery.Wait(waitCtx), context.DeadlineExceeded)
	require.Less(t, time.Since(start), 2*time.Second)
}
