package ports

import (
	"context"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

// AuthService verifies credentials and resolves session principals.
type AuthService interface {
	Authenticate(ctx context.Context, identifier, password string) (*domain.User, error)
	// LoadPrincipal returns nil without error when id does not name an
	// active user.
	LoadPrincipal(ctx context.Context, id string) (*domain.User, error)
	RecordLogin(ctx context.Context, id string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
