package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

// UserService implements account management.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log}
}

// CreateUser registers an active account and returns its id. An empty role
// defaults to viewer.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string, role domain.RoleID) (string, error) {
	if role == "" {
		role = domain.RoleViewer
	}
	if !domain.IsValidRole(role) {
		return "", domain.NewInvalidRoleError(role)
	}
	if username == "" || email == "" || password == "" {
		return "", fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}

	hash, err := s.hashPassword("create user", password)
	if err != nil {
		return "", err
	}

	id, err := s.repo.Create(ctx, domain.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return "", domain.ErrDuplicateUser
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", id).Str("username", username).Str("role", string(role)).Msg("user created")
	return id, nil
}

// SetPassword replaces the password of id without checking the old one.
func (s *UserService) SetPassword(ctx context.Context, id, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	hash, err := s.hashPassword("set password", newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return wrapNotFound("set password", err)
	}
	return nil
}

// ChangeOwnPassword replaces the password of id after verifying the current
// one.
func (s *UserService) ChangeOwnPassword(ctx context.Context, id, currentPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrInvalidInput)
	}

	creds, err := s.repo.FindCredentialsByID(ctx, id)
	if err != nil {
		return wrapNotFound("change password", err)
	}
	if !s.hasher.Compare(creds.PasswordHash, currentPassword) {
		return domain.ErrIncorrectCurrentPassword
	}

	hash, err := s.hashPassword("change password", newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return wrapNotFound("change password", err)
	}
	return nil
}

// UpdateRole assigns role to id. The role is validated before the store is
// touched, so an invalid role leaves the stored one unchanged.
func (s *UserService) UpdateRole(ctx context.Context, id string, role domain.RoleID) error {
	if !domain.IsValidRole(role) {
		return domain.NewInvalidRoleError(role)
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return wrapNotFound("update role", err)
	}
	s.log.Info().Str("user_id", id).Str("role", string(role)).Msg("user role updated")
	return nil
}

// ToggleActive flips the active flag of id.
func (s *UserService) ToggleActive(ctx context.Context, id string) error {
	if err := s.repo.ToggleActive(ctx, id); err != nil {
		return wrapNotFound("toggle active", err)
	}
	return nil
}

// ListUsers returns every account, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Profile(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound("profile", err)
	}
	return user, nil
}

// Bootstrap creates an admin account unless the username or email already
// exists. It reports whether an account was created.
func (s *UserService) Bootstrap(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.CreateUser(ctx, username, email, password, domain.RoleAdmin)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrDuplicateUser):
		return false, nil
	default:
		return false, err
	}
}

// hashPassword passes input errors through untouched so they reach the
// caller as domain.ErrInvalidInput.
func (s *UserService) hashPassword(op, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return "", err
		}
		return "", fmt.Errorf("%s: hash password: %w", op, err)
	}
	return hash, nil
}

func wrapNotFound(op string, err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ ports.UserService = (*UserService)(nil)
