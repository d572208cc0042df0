package ports

import (
	"context"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

// UserService manages accounts on behalf of administrators and of the users
// themselves.
type UserService interface {
	CreateUser(ctx context.Context, username, email, password string, role domain.RoleID) (string, error)
	SetPassword(ctx context.Context, id, newPassword string) error
	ChangeOwnPassword(ctx context.Context, id, currentPassword, newPassword string) error
	UpdateRole(ctx context.Context, id string, role domain.RoleID) error
	ToggleActive(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	Profile(ctx context.Context, id string) (*domain.User, error)
}
