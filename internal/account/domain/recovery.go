package domain

import "time"

// RecoverySession is the short-lived proof that a user answered their
// security questions. It is never persisted to the credential store.
type RecoverySession struct {
	Token     string
	UserID    string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether now is past ExpiresAt. A session is still valid at
// exactly ExpiresAt.
func (s RecoverySession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
