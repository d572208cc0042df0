package ports

import (
	"context"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

// AuditFilter narrows an audit listing. Zero values mean no filter.
type AuditFilter struct {
	Type    domain.AuditEventType
	Subject string
	Limit   int
}

// AuditRepository persists and reads the authentication audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
	// List returns events newest first.
	List(ctx context.Context, filter AuditFilter) ([]*domain.AuditEvent, error)
}
