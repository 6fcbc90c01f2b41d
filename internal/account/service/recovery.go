package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/aussiebroadwan/mindful/internal/account/recovery"
	"github.com/aussiebroadwan/mindful/internal/account/store"
	"github.com/aussiebroadwan/mindful/pkg/cryptox"
	"github.com/aussiebroadwan/mindful/pkg/notify"
	"github.com/aussiebroadwan/mindful/pkg/slogx"
)

// RecoveryService runs the forgot-username and forgot-password flows:
// locate the account, verify every security answer, then accept a new
// password against a single-use reset token.
//
// Lookups for unknown accounts return ErrUserNotFound on every step that
// takes an identifier.
type RecoveryService struct {
	Store    store.Store
	Hasher   *cryptox.Hasher
	Sessions recovery.SessionStore

	// Notifier is optional; delivery failures are logged, never returned.
	Notifier notify.Notifier
	// NotifyTimeout bounds each delivery (default: DefaultNotifyTimeout).
	NotifyTimeout time.Duration

	pending sync.WaitGroup
}

// DefaultNotifyTimeout is used when NotifyTimeout is not set.
const DefaultNotifyTimeout = 30 * time.Second

// FindUsername returns the username registered to email.
func (s *RecoveryService) FindUsername(ctx context.Context, email string) (string, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user by email: %w", err)
	}
	return u.Username, nil
}

// SecurityQuestions lists the question texts bound to username, ordered by
// question id. Answers never leave the store.
func (s *RecoveryService) SecurityQuestions(ctx context.Context, username string) ([]domain.SecurityQuestion, error) {
	u, err := s.user(ctx, username)
	if err != nil {
		return nil, err
	}

	qs, err := s.Store.SecurityAnswers().ListQuestionsForUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list user questions: %w", err)
	}
	if len(qs) == 0 {
		return nil, ErrNoSecurityQuestions
	}
	return qs, nil
}

// VerifyAnswers checks one answer per bound question. Every answer is
// verified, and any miss yields ErrIncorrectAnswers without saying which.
// On success a reset session is issued and its token is also sent to the
// registered email.
func (s *RecoveryService) VerifyAnswers(ctx context.Context, username string, answers []AnswerInput) (domain.RecoverySession, error) {
	log := slogx.FromContext(ctx)

	u, err := s.user(ctx, username)
	if err != nil {
		return domain.RecoverySession{}, err
	}

	stored, err := s.Store.SecurityAnswers().GetAnswerHashes(ctx, u.ID)
	if err != nil {
		return domain.RecoverySession{}, fmt.Errorf("get answer hashes: %w", err)
	}
	if len(stored) < domain.MinSecurityAnswers {
		return domain.RecoverySession{}, ErrNoSecurityQuestions
	}
	if len(answers) != len(stored) {
		return domain.RecoverySession{}, validationError("expected %d answers, got %d", len(stored), len(answers))
	}

	correct := true
	seen := make(map[int64]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			return domain.RecoverySession{}, validationError("security question %d answered twice", a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}

		hash, ok := stored[a.QuestionID]
		if !ok {
			correct = false
			continue
		}
		switch err := s.Hasher.VerifyAnswer(a.Answer, hash); {
		case err == nil:
		case errors.Is(err, cryptox.ErrMismatch):
			correct = false
		default:
			return domain.RecoverySession{}, fmt.Errorf("verify answer: %w", err)
		}
	}
	if !correct {
		log.Warn("security answers rejected", slog.String("user_id", u.ID))
		return domain.RecoverySession{}, ErrIncorrectAnswers
	}

	sess, err := s.Sessions.Issue(ctx, u.ID, u.Username)
	if err != nil {
		return domain.RecoverySession{}, fmt.Errorf("issue recovery session: %w", err)
	}
	log.Info("recovery session issued",
		slog.String("user_id", u.ID),
		slog.Time("expires_at", sess.ExpiresAt),
	)

	s.notify(ctx, u.Email, sess.Token)
	return sess, nil
}

// ResetPassword redeems token and sets the new password. The token is
// consumed before anything is written, so it cannot be replayed even if
// the write fails.
func (s *RecoveryService) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := slogx.FromContext(ctx)

	if err := checkPassword(newPassword); err != nil {
		return err
	}

	sess, err := s.Sessions.Consume(ctx, token)
	if errors.Is(err, recovery.ErrInvalidToken) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("consume recovery session: %w", err)
	}

	hash, err := s.Hasher.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, sess.UserID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	log.Info("password reset", slog.String("user_id", sess.UserID))
	return nil
}

// Wait blocks until in-flight notifications finish or ctx is done, in which
// case it returns ctx.Err() and leaves the stragglers to their own timeout.
func (s *RecoveryService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RecoveryService) user(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// notify hands the token to the Notifier without blocking the caller.
func (s *RecoveryService) notify(ctx context.Context, to, token string) {
	if s.Notifier == nil {
		return
	}

	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.Notifier.Send(ctx, to, token); err != nil {
			slogx.FromContext(ctx).Warn("recovery notification failed", slog.Any("err", err))
		}
	}()
}
