package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tablero/dashboard-auth/internal/api/middleware"
	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

// currentUser returns the principal attached by the Authenticate middleware.
// Routes using it sit behind a guard, so a missing principal means the
// router was wired without one; it is reported as 401 rather than trusted.
func currentUser(c echo.Context) (*domain.User, error) {
	u := middleware.PrincipalFrom(c)
	if u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return u, nil
}

// record sends an audit event stamped with the caller's address. A nil
// recorder disables auditing.
func record(audit ports.AuditRecorder, c echo.Context, event domain.AuditEvent) {
	if audit == nil {
		return
	}
	event.RemoteIP = c.RealIP()
	event.OccurredAt = time.Now().UTC()
	audit.Record(event)
}
