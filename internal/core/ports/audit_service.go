package ports

import (
	"context"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditService persists queued audit events and serves the audit listing.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
	List(ctx context.Context, filter AuditFilter) ([]*domain.AuditEvent, error)
}
