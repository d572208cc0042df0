package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

// errorResponse is the JSON envelope for every API error.
type errorResponse struct {
	Error      string   `json:"error"`
	ValidRoles []string `json:"valid_roles,omitempty"`
}

// NewHTTPErrorHandler maps domain errors to status codes. Anything it does
// not recognise is logged and answered with a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var roleErr *domain.InvalidRoleError
	if errors.As(err, &roleErr) {
		valid := make([]string, 0, len(roleErr.Valid))
		for _, r := range roleErr.Valid {
			valid = append(valid, string(r))
		}
		return http.StatusUnprocessableEntity, errorResponse{Error: roleErr.Error(), ValidRoles: valid}
	}

	switch {
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrDuplicateUser):
		return http.StatusConflict, errorResponse{Error: "username or email already in use"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrIncorrectCurrentPassword):
		return http.StatusBadRequest, errorResponse{Error: "current password is incorrect"}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
