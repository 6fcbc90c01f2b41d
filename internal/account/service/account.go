package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/aussiebroadwan/mindful/internal/account/store"
	"github.com/aussiebroadwan/mindful/pkg/cryptox"
	"github.com/aussiebroadwan/mindful/pkg/idx"
	"github.com/aussiebroadwan/mindful/pkg/slogx"
)

// AccountService owns signup, login and the account operations behind the
// identity-asserted surface.
type AccountService struct {
	Store  store.Store
	Hasher *cryptox.Hasher

	dummyOnce sync.Once
	dummyHash string
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Phone    string
}

type ProfileUpdate struct {
	Name  string
	Phone string
	Email string
}

// Signup creates an account. A taken username or email is reported as a
// *DuplicateFieldError naming the field.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (domain.Profile, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" {
		return domain.Profile{}, validationError("username and email are required")
	}
	if err := checkPassword(in.Password); err != nil {
		return domain.Profile{}, err
	}

	hash, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: hash,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if dup := duplicateField(err); dup != nil {
			return domain.Profile{}, dup
		}
		return domain.Profile{}, fmt.Errorf("create user: %w", err)
	}

	log.Info("user signed up", slog.String("user_id", u.ID))
	return u.Profile(), nil
}

// Login verifies the password and grants CapabilityPasswordVerified. Unknown
// usernames and wrong passwords both return ErrInvalidCredentials after
// comparable work.
func (s *AccountService) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		s.burnVerify(password)
		return domain.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("get user: %w", err)
	}

	if err := s.Hasher.VerifyPassword(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			log.Error("stored password hash unusable", slog.String("user_id", u.ID), slog.Any("err", err))
		}
		return domain.Identity{}, ErrInvalidCredentials
	}

	if s.Hasher.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u.ID, password)
	}

	return domain.Identity{Profile: u.Profile(), Capability: domain.CapabilityPasswordVerified}, nil
}

// ResolveIdentity looks up username for the identity middleware. It checks
// no secret and grants only CapabilityIdentityAsserted.
func (s *AccountService) ResolveIdentity(ctx context.Context, username string) (domain.Identity, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Identity{}, ErrUserNotFound
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("get user: %w", err)
	}
	return domain.Identity{Profile: u.Profile(), Capability: domain.CapabilityIdentityAsserted}, nil
}

func (s *AccountService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Profile{}, ErrUserNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get user: %w", err)
	}
	return u.Profile(), nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (domain.Profile, error) {
	if strings.TrimSpace(in.Email) == "" {
		return domain.Profile{}, validationError("email is required")
	}

	err := s.Store.Users().UpdateProfile(ctx, userID, in.Name, in.Phone, in.Email)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return domain.Profile{}, ErrUserNotFound
	case duplicateField(err) != nil:
		return domain.Profile{}, duplicateField(err)
	default:
		return domain.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	slogx.FromContext(ctx).Info("profile updated", slog.String("user_id", userID))
	return s.Profile(ctx, userID)
}

// ChangePassword requires the current password, upgrading the request to
// CapabilityPasswordVerified before anything is written.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, next string) error {
	log := slogx.FromContext(ctx)

	if err := checkPassword(next); err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if err := s.Hasher.VerifyPassword(current, u.PasswordHash); err != nil {
		log.Warn("change password: current password rejected", slog.String("user_id", userID))
		return ErrInvalidCredentials
	}

	hash, err := s.Hasher.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	log.Info("password changed", slog.String("user_id", userID))
	return nil
}

// DeleteAccount removes the user; security answers go with it.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	err := s.Store.Users().DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	slogx.FromContext(ctx).Info("account deleted", slog.String("user_id", userID))
	return nil
}

func (s *AccountService) rehash(ctx context.Context, userID, password string) {
	log := slogx.FromContext(ctx)

	hash, err := s.Hasher.HashPassword(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		log.Warn("password rehash failed", slog.String("user_id", userID), slog.Any("err", err))
		return
	}
	log.Info("password rehashed", slog.String("user_id", userID), slog.String("algorithm", string(s.Hasher.Algorithm())))
}

// burnVerify spends one verification on a throwaway hash so that unknown
// usernames take as long as wrong passwords.
func (s *AccountService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.HashPassword("not-a-real-password")
	})
	_ = s.Hasher.VerifyPassword(password, s.dummyHash)
}

func duplicateField(err error) *DuplicateFieldError {
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		return &DuplicateFieldError{Field: "username"}
	case errors.Is(err, store.ErrDuplicateEmail):
		return &DuplicateFieldError{Field: "email"}
	default:
		return nil
	}
}
