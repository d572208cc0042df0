package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tablero/dashboard-auth/internal/api/metrics"
	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

// SessionManager creates and destroys browser sessions.
type SessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Destroy(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

// TokenIssuer signs bearer tokens for API clients.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthHandlerOptions wires an AuthHandler. Sessions, Tokens and Audit are
// optional.
type AuthHandlerOptions struct {
	Auth         ports.AuthService
	Users        ports.UserService
	Sessions     SessionManager
	Tokens       TokenIssuer
	Audit        ports.AuditRecorder
	CookieName   string
	SecureCookie bool
	Log          zerolog.Logger
}

type AuthHandler struct {
	auth         ports.AuthService
	users        ports.UserService
	sessions     SessionManager
	tokens       TokenIssuer
	audit        ports.AuditRecorder
	cookieName   string
	secureCookie bool
	log          zerolog.Logger
}

func NewAuthHandler(opts AuthHandlerOptions) *AuthHandler {
	name := opts.CookieName
	if name == "" {
		name = "session_id"
	}
	return &AuthHandler{
		auth:         opts.Auth,
		users:        opts.Users,
		sessions:     opts.Sessions,
		tokens:       opts.Tokens,
		audit:        opts.Audit,
		cookieName:   name,
		secureCookie: opts.SecureCookie,
		log:          opts.Log,
	}
}

// Login verifies credentials, opens a session and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Username or email and password"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	user, err := h.auth.Authenticate(ctx, req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationFailed) {
			metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
			record(h.audit, c, domain.AuditEvent{Type: domain.AuditLoginFailed, Subject: req.Identifier})
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	if err := h.auth.RecordLogin(ctx, user.ID); err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("could not record last login")
	}

	if h.sessions != nil {
		sessionID, err := h.sessions.Create(ctx, user.ID)
		if err != nil {
			return err
		}
		c.SetCookie(&http.Cookie{
			Name:     h.cookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(h.sessions.TTL().Seconds()),
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}

	var token string
	if h.tokens != nil {
		if token, err = h.tokens.Issue(user.ID); err != nil {
			return err
		}
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	record(h.audit, c, domain.AuditEvent{Type: domain.AuditLoginSucceeded, ActorID: user.ID, Subject: user.ID})
	h.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Logout ends the caller's session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if cookie, err := c.Cookie(h.cookieName); err == nil && h.sessions != nil {
		if err := h.sessions.Destroy(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	record(h.audit, c, domain.AuditEvent{Type: domain.AuditLogout, ActorID: user.ID, Subject: user.ID})
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Me returns the caller's profile with its role name and permissions.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProfileResponse(user))
}

// ChangePassword replaces the caller's password after checking the current
// one.
//
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.users.ChangeOwnPassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("change_password").Inc()
	record(h.audit, c, domain.AuditEvent{Type: domain.AuditPasswordChanged, ActorID: user.ID, Subject: user.ID})
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}
