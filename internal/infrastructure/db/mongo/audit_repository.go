package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

const auditCollection = "auth_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

type auditDocument struct {
	Type       string    `bson:"type"`
	ActorID    string    `bson:"actor_id,omitempty"`
	Subject    string    `bson:"subject"`
	Detail     string    `bson:"detail,omitempty"`
	RemoteIP   string    `bson:"remote_ip,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
	StoredAt   time.Time `bson:"stored_at"`
}

// Insert persists an audit event.
func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := auditDocument{
		Type:       string(event.Type),
		ActorID:    event.ActorID,
		Subject:    event.Subject,
		Detail:     event.Detail,
		RemoteIP:   event.RemoteIP,
		OccurredAt: event.OccurredAt.UTC(),
		StoredAt:   time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns events matching filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter ports.AuditFilter) ([]*domain.AuditEvent, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}
	if filter.Subject != "" {
		query["subject"] = filter.Subject
	}

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []auditDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}

	events := make([]*domain.AuditEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, &domain.AuditEvent{
			Type:       domain.AuditEventType(d.Type),
			ActorID:    d.ActorID,
			Subject:    d.Subject,
			Detail:     d.Detail,
			RemoteIP:   d.RemoteIP,
			OccurredAt: d.OccurredAt.UTC(),
		})
	}
	return events, nil
}

// EnsureIndexes creates the indexes used by List.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "subject", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "occurred_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

var _ ports.AuditRepository = (*AuditRepository)(nil)
