package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthenticationFailed covers bad credentials and unknown or inactive
	// accounts alike.
	ErrAuthenticationFailed     = errors.New("invalid credentials")
	ErrInvalidRole              = errors.New("invalid role")
	ErrDuplicateUser            = errors.New("username or email already exists")
	ErrUserNotFound             = errors.New("user not found")
	ErrIncorrectCurrentPassword = errors.New("current password is incorrect")
	ErrInvalidInput             = errors.New("invalid input")
)

// InvalidRoleError reports a role id outside the registry together with the
// ids that would have been accepted. It matches ErrInvalidRole with errors.Is.
type InvalidRoleError struct {
	Role  RoleID
	Valid []RoleID
}

// NewInvalidRoleError builds an InvalidRoleError listing the registered roles.
func NewInvalidRoleError(role RoleID) *InvalidRoleError {
	return &InvalidRoleError{Role: role, Valid: RoleIDs()}
}

func (e *InvalidRoleError) Error() string {
	valid := make([]string, len(e.Valid))
	for i, id := range e.Valid {
		valid[i] = string(id)
	}
	return fmt.Sprintf("invalid role %q: must be one of %s", e.Role, strings.Join(valid, ", "))
}

func (e *InvalidRoleError) Is(target error) bool {
	return target == ErrInvalidRole
}
