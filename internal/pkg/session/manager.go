// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Data is the Redis-side record for one live token. A token whose jti has
// no session here is treated as logged out even if its signature is valid.
type Data struct {
	JTI            string    `json:"jti"`
	UserID         int64     `json:"user_id"`
	Email          string    `json:"email"`
	Admin          bool      `json:"admin"`
	Unidad         string    `json:"unidad,omitempty"`
	LoginAt        time.Time `json:"login_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

func (m *Manager) Create(ctx context.Context, s *Data) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.client.Set(ctx, m.key(s.UserID, s.JTI), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (m *Manager) Get(ctx context.Context, userID int64, jti string) (*Data, error) {
	raw, err := m.client.Get(ctx, m.key(userID, jti)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Data
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	s.LastActivityAt = time.Now()
	go m.touch(context.Background(), &s)

	return &s, nil
}

func (m *Manager) Invalidate(ctx context.Context, userID int64, jti string) error {
	return m.client.Del(ctx, m.key(userID, jti)).Err()
}

// InvalidateAll drops every live session of one user, for password changes
// and account deactivation.
func (m *Manager) InvalidateAll(ctx context.Context, userID int64) error {
	iter := m.client.Scan(ctx, 0, fmt.Sprintf("session:%d:*", userID), 0).Iterator()
	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

func (m *Manager) touch(ctx context.Context, s *Data) {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	m.client.Set(ctx, m.key(s.UserID, s.JTI), data, ttl)
}

func (m *Manager) key(userID int64, jti string) string {
	return fmt.Sprintf("session:%d:%s", userID, jti)
}
