package presence

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a user counts as online after the last heartbeat.
// Websocket pongs arrive roughly once a minute, so 90s tolerates one miss.
const DefaultTTL = 90 * time.Second

// Tracker 基于 Redis 的在线状态，key 随 TTL 过期，断线无需清理也会自动下线
type Tracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTracker(client *redis.Client, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{client: client, ttl: ttl}
}

// SetOnline marks the user online, refreshing the TTL.
func (t *Tracker) SetOnline(ctx context.Context, userID uint) error {
	key := onlineKey(userID)
	if err := t.client.Set(ctx, key, "1", t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set user %d online: %w", userID, err)
	}
	return nil
}

// SetOffline removes the user's presence key immediately.
func (t *Tracker) SetOffline(ctx context.Context, userID uint) error {
	if err := t.client.Del(ctx, onlineKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to set user %d offline: %w", userID, err)
	}
	return nil
}

// IsOnline reports whether the user currently has a live presence key.
func (t *Tracker) IsOnline(ctx context.Context, userID uint) (bool, error) {
	n, err := t.client.Exists(ctx, onlineKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check presence of user %d: %w", userID, err)
	}
	return n > 0, nil
}

func onlineKey(userID uint) string {
	return fmt.Sprintf("user:%d:online", userID)
}
