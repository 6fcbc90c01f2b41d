package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrDuplicateUsername and ErrDuplicateEmail name the unique field a
	// write collided with. Both match ErrAlreadyExists.
	ErrDuplicateUsername = fmt.Errorf("%w: username", ErrAlreadyExists)
	ErrDuplicateEmail    = fmt.Errorf("%w: email", ErrAlreadyExists)
)

// Store is the root data access interface for the credential store. Drivers
// expose sub-repositories so transactional code gets the same surface
// through Tx without being able to nest transactions.
type Store interface {
	Users() Users
	SecurityQuestions() SecurityQuestions
	SecurityAnswers() SecurityAnswers

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts u (ID supplied by the caller). Username is checked
	// before email; the first collision is reported as ErrDuplicateUsername
	// or ErrDuplicateEmail.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername and GetUserByEmail match exactly, case-sensitive.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateProfile replaces the mutable contact fields. A taken email yields
	// ErrDuplicateEmail.
	UpdateProfile(ctx context.Context, userID, name, phone, email string) error

	// DeleteUser cascades to the user's security answers.
	DeleteUser(ctx context.Context, userID string) error
}

type SecurityQuestions interface {
	// SeedQuestions inserts any of questions not yet in the catalog and
	// returns how many were new. Running it twice is harmless.
	SeedQuestions(ctx context.Context, questions []string) (int, error)

	// ListQuestions returns the catalog ordered by id.
	ListQuestions(ctx context.Context) ([]domain.SecurityQuestion, error)
}

type SecurityAnswers interface {
	CreateAnswer(ctx context.Context, a domain.SecurityAnswer) error

	DeleteAllForUser(ctx context.Context, userID string) error

	// ListQuestionsForUser returns the questions a user has answered,
	// ordered by question id. Answers are never returned.
	ListQuestionsForUser(ctx context.Context, userID string) ([]domain.SecurityQuestion, error)

	// GetAnswerHashes maps question id to the stored answer hash.
	GetAnswerHashes(ctx context.Context, userID string) (map[int64]string, error)
}
