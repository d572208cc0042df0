package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

// PrincipalLoader resolves a user id to its principal.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, id string) (*domain.User, error)
}

// SessionResolver maps a session id to the bound user id ("" when none).
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (string, error)
}

// TokenParser maps a bearer token to the user id it was issued for.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// AuthOptions configures Authenticate. Sessions and Tokens are optional.
type AuthOptions struct {
	Loader     PrincipalLoader
	Sessions   SessionResolver
	Tokens     TokenParser
	CookieName string
	Log        zerolog.Logger
}

// Authenticate resolves the caller's principal from the session cookie or a
// bearer token and attaches it to the context. The principal is loaded from
// the store on every request. The middleware never rejects a request, not
// even when the store fails; guards decide what an anonymous caller may
// reach.
func Authenticate(opts AuthOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			userID := resolveUserID(c, opts)
			if userID == "" {
				return next(c)
			}

			principal, err := opts.Loader.LoadPrincipal(ctx, userID)
			if err != nil {
				// Continue anonymously: guarded routes still refuse the
				// request and public ones keep working.
				opts.Log.Error().Err(err).Str("user_id", userID).Msg("principal lookup failed")
				return next(c)
			}
			if principal != nil {
				SetPrincipal(c, principal)
			}
			return next(c)
		}
	}
}

func resolveUserID(c echo.Context, opts AuthOptions) string {
	ctx := c.Request().Context()

	if opts.Sessions != nil && opts.CookieName != "" {
		if cookie, err := c.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
			userID, err := opts.Sessions.Resolve(ctx, cookie.Value)
			if err != nil {
				opts.Log.Warn().Err(err).Msg("session lookup failed")
			} else if userID != "" {
				return userID
			}
		}
	}

	if opts.Tokens != nil {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if userID, err := opts.Tokens.Parse(parts[1]); err == nil {
				return userID
			}
		}
	}

	return ""
}
