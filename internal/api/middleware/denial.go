package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tablero/dashboard-auth/internal/api/metrics"
	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

// DenialLog reports denials to the log, the denial counter and, when set,
// the audit trail.
type DenialLog struct {
	log   zerolog.Logger
	audit ports.AuditRecorder
}

func NewDenialLog(log zerolog.Logger, audit ports.AuditRecorder) *DenialLog {
	return &DenialLog{log: log, audit: audit}
}

func (r *DenialLog) ReportDenial(c echo.Context, d domain.Denial) {
	metrics.AuthorizationDenialsTotal.WithLabelValues(string(d.Reason)).Inc()

	var userID string
	if u := PrincipalFrom(c); u != nil {
		userID = u.ID
	}

	r.log.Info().
		Str("reason", string(d.Reason)).
		Str("detail", d.Detail).
		Str("user_id", userID).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("access denied")

	// Anonymous hits are only logged; the audit trail is about accounts.
	if r.audit == nil || userID == "" {
		return
	}
	r.audit.Record(domain.AuditEvent{
		Type:       domain.AuditAccessDenied,
		ActorID:    userID,
		Subject:    userID,
		Detail:     string(d.Reason) + ":" + d.Detail,
		RemoteIP:   c.RealIP(),
		OccurredAt: time.Now().UTC(),
	})
}
