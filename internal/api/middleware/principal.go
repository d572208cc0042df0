package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

const principalKey = "principal"

// SetPrincipal attaches the authenticated user to the request context.
func SetPrincipal(c echo.Context, u *domain.User) {
	c.Set(principalKey, u)
}

// PrincipalFrom returns the authenticated user, or nil.
func PrincipalFrom(c echo.Context) *domain.User {
	u, _ := c.Get(principalKey).(*domain.User)
	return u
}
