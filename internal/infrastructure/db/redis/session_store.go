package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 12 * time.Hour

// SessionStore maps opaque session ids to user ids.
// Key format: session:<uuid> -> <user id>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore whose entries expire after ttl.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// TTL is the lifetime of a new or refreshed session.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create binds a new session to userID and returns its id.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id.String()), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	return id.String(), nil
}

// Resolve returns the user bound to sessionID, or "" when the session does
// not exist or has expired. Live sessions have their expiry extended.
func (s *SessionStore) Resolve(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	userID, err := s.client.GetEx(ctx, s.key(sessionID), s.ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("session resolve: %w", err)
	}
	return userID, nil
}

// Destroy removes sessionID. Destroying an unknown session is not an error.
func (s *SessionStore) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}
