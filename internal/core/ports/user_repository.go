package ports

import (
	"context"
	"time"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

// UserRepository is the user store over the usuarios table. Every mutation
// touches a single row and reports domain.ErrUserNotFound when no row matched.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindActiveByIdentifier returns every active user whose username or
	// email equals identifier exactly.
	FindActiveByIdentifier(ctx context.Context, identifier string) ([]*domain.UserCredentials, error)
	FindCredentialsByID(ctx context.Context, id string) (*domain.UserCredentials, error)
	// Create inserts an active user and returns its id. Fails with
	// domain.ErrDuplicateUser when the username or email is taken.
	Create(ctx context.Context, user domain.NewUser) (string, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateRole(ctx context.Context, id string, role domain.RoleID) error
	ToggleActive(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	// ListAll returns every user, newest created_at first.
	ListAll(ctx context.Context) ([]*domain.User, error)
}
