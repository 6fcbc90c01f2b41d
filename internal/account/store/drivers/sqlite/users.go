package sqlite

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/aussiebroadwan/mindful/internal/account/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, name, phone, password_hash`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.Phone, &u.PasswordHash)
	return u, mapNotFound(err)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	if err := r.exists(ctx, `SELECT 1 FROM users WHERE username = ?`, u.Username); err != nil {
		return remap(err, store.ErrDuplicateUsername)
	}
	if err := r.exists(ctx, `SELECT 1 FROM users WHERE email = ?`, u.Email); err != nil {
		return remap(err, store.ErrDuplicateEmail)
	}

	// A concurrent signup can still win between the checks and the insert;
	// the UNIQUE constraints catch it and map to the same errors.
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.Name, u.Phone, u.PasswordHash,
	)
	return mapConstraint(err)
}

var errTaken = errors.New("taken")

// exists returns errTaken when query yields a row.
func (r *usersRepo) exists(ctx context.Context, query string, arg any) error {
	var one int
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&one)
	switch {
	case err == nil:
		return errTaken
	case errors.Is(mapNotFound(err), store.ErrNotFound):
		return nil
	default:
		return err
	}
}

func remap(err, taken error) error {
	if errors.Is(err, errTaken) {
		return taken
	}
	return err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, newHash, userID))
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, name, phone, email string) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE email = ? AND id <> ?`, email, userID).Scan(&one)
	if err == nil {
		return store.ErrDuplicateEmail
	}
	if !errors.Is(mapNotFound(err), store.ErrNotFound) {
		return err
	}

	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, phone = ?, email = ? WHERE id = ?`, name, phone, email, userID))
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID))
}
