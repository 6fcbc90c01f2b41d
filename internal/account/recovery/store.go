// Package recovery keeps the short-lived sessions that connect a verified
// set of security answers to a single password reset.
package recovery

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/aussiebroadwan/mindful/pkg/cryptox"
)

const (
	// DefaultTTL is how long a reset token stays redeemable.
	DefaultTTL = 10 * time.Minute

	// TokenLength is the number of Alphanumeric symbols in a reset token.
	TokenLength = 48
)

// ErrInvalidToken covers unknown, consumed and expired tokens alike.
var ErrInvalidToken = errors.New("recovery: token invalid or expired")

// SessionStore holds recovery sessions between answer verification and the
// password reset. Implementations must make Consume atomic: of two callers
// racing on one token, exactly one receives the session.
type SessionStore interface {
	// Issue mints a fresh token for the user, valid for the store's TTL.
	Issue(ctx context.Context, userID, username string) (domain.RecoverySession, error)

	// Validate returns the live session for token without consuming it.
	Validate(ctx context.Context, token string) (domain.RecoverySession, error)

	// Consume validates token and removes it in one step.
	Consume(ctx context.Context, token string) (domain.RecoverySession, error)

	// PurgeExpired drops expired sessions and reports how many went.
	PurgeExpired(ctx context.Context) (int, error)
}

// Options tune a SessionStore. Zero values select the defaults.
type Options struct {
	TTL      time.Duration
	Now      func() time.Time
	NewToken func() (string, error)
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewToken == nil {
		o.NewToken = newToken
	}
	return o
}

func newToken() (string, error) {
	return cryptox.RandomString(TokenLength, cryptox.Alphanumeric)
}

// newSession stamps a session for userID at now.
func (o Options) newSession(userID, username string) (domain.RecoverySession, error) {
	token, err := o.NewToken()
	if err != nil {
		return domain.RecoverySession{}, err
	}
	now := o.Now()
	return domain.RecoverySession{
		Token:     token,
		UserID:    userID,
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(o.TTL),
	}, nil
}

// key is the storage key for token. Stores never index by the raw token.
func key(token string) string {
	return cryptox.FingerprintToken(token)
}
