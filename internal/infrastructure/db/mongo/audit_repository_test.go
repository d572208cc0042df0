package mongo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

func TestAuditRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewAuditRepository(mt.DB)

		err := repo.Insert(context.Background(), &domain.AuditEvent{
			Type:       domain.AuditLoginSucceeded,
			Subject:    "7",
			OccurredAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	})

	mt.Run("insert error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate"}))
		repo := NewAuditRepository(mt.DB)

		if err := repo.Insert(context.Background(), &domain.AuditEvent{Type: domain.AuditLogout}); err == nil {
			t.Fatalf("expected error")
		}
	})

	mt.Run("list", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + auditCollection
		newer := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
		older := newer.Add(-time.Hour)

		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			bson.D{{Key: "type", Value: "access_denied"}, {Key: "subject", Value: "7"}, {Key: "detail", Value: "missing_permission:delete"}, {Key: "occurred_at", Value: newer}},
		)
		second := mtest.CreateCursorResponse(0, ns, mtest.NextBatch,
			bson.D{{Key: "type", Value: "login_succeeded"}, {Key: "subject", Value: "7"}, {Key: "occurred_at", Value: older}},
		)
		mt.AddMockResponses(first, second)

		repo := NewAuditRepository(mt.DB)
		events, err := repo.List(context.Background(), ports.AuditFilter{Subject: "7", Limit: 10})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Type != domain.AuditAccessDenied || !events[0].OccurredAt.Equal(newer) {
			t.Fatalf("unexpected first event: %+v", events[0])
		}
		if events[1].Type != domain.AuditLoginSucceeded {
			t.Fatalf("unexpected second event: %+v", events[1])
		}
	})
}
