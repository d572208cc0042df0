package domain

import "time"

// User is the principal attached to an authenticated request and the profile
// returned by the user store. It never carries the password hash.
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      RoleID     `json:"role"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// HasPermission reports whether the user's role grants p.
func (u *User) HasPermission(p Permission) bool {
	if u == nil {
		return false
	}
	return HasPermission(u.Role, p)
}

// RoleName returns the display name of the user's role.
func (u *User) RoleName() string {
	if u == nil {
		return UnknownRoleName
	}
	return RoleName(u.Role)
}

// UserCredentials pairs a user with its stored password hash. Only the
// authenticator and password management code see it.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// NewUser carries the fields required to insert a user record.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Role         RoleID
}
