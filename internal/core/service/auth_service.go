package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

// AuthService implements credential verification and principal loading.
type AuthService struct {
	repo      ports.UserRepository
	hasher    ports.PasswordHasher
	dummyHash string
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *AuthService {
	s := &AuthService{repo: repo, hasher: hasher, log: log}
	// Compared against when there is no unique match so that unknown
	// identifiers cost the same as wrong passwords.
	if h, err := hasher.Hash("dashboard-auth-timing-equaliser"); err == nil {
		s.dummyHash = h
	}
	return s
}

// Authenticate returns the principal for identifier (username or email) when
// exactly one active account matches and password verifies. Every other
// outcome except a store failure is domain.ErrAuthenticationFailed.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	if identifier == "" || password == "" {
		return nil, domain.ErrAuthenticationFailed
	}

	matches, err := s.repo.FindActiveByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if len(matches) != 1 {
		if len(matches) > 1 {
			s.log.Warn().Int("matches", len(matches)).Msg("ambiguous login identifier")
		}
		s.hasher.Compare(s.dummyHash, password)
		return nil, domain.ErrAuthenticationFailed
	}

	creds := matches[0]
	if !creds.User.Active || !s.hasher.Compare(creds.PasswordHash, password) {
		return nil, domain.ErrAuthenticationFailed
	}

	user := creds.User
	return &user, nil
}

// LoadPrincipal resolves a session's user id. Unknown and deactivated
// accounts yield no principal.
func (s *AuthService) LoadPrincipal(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, nil
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	if !user.Active {
		return nil, nil
	}
	return user, nil
}

// RecordLogin stamps the user's last login with the current time.
func (s *AuthService) RecordLogin(ctx context.Context, id string) error {
	if err := s.repo.UpdateLastLogin(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

var _ ports.AuthService = (*AuthService)(nil)
