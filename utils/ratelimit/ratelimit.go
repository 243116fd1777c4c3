package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter checks whether an identified caller may perform another operation
// inside the current window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
	Reset(ctx context.Context, key string, window time.Duration) error
}

// RedisLimiter implements fixed-window counting over Redis so limits hold
// across all server instances. With fallback enabled, failures fail open:
// a broken Redis must never block message sending.
type RedisLimiter struct {
	client   *redis.Client
	logger   *zap.Logger
	fallback bool
}

func NewRedisLimiter(client *redis.Client, logger *zap.Logger, fallback bool) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		logger:   logger,
		fallback: fallback,
	}
}

// Allow consumes one token for key and reports whether the caller is still
// inside the limit for the window.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucketKey := bucketKey(key, time.Now(), window)

	pipe := l.client.Pipeline()
	incrCmd := pipe.Incr(ctx, bucketKey)
	pipe.Expire(ctx, bucketKey, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		if l.fallback {
			l.logger.Warn("rate limit check failed, allowing request (fail-open)",
				zap.String("key", key),
				zap.Error(err),
			)
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incrCmd.Val()
	allowed := count <= int64(limit)

	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit),
			zap.Duration("window", window),
		)
	}

	return allowed, nil
}

// Remaining reports how many operations are left in the current window.
func (l *RedisLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	count, err := l.client.Get(ctx, bucketKey(key, time.Now(), window)).Int64()
	if err != nil {
		if err == redis.Nil {
			return limit, nil
		}
		return 0, fmt.Errorf("failed to get remaining tokens: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset clears the current window's counter for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string, window time.Duration) error {
	if err := l.client.Del(ctx, bucketKey(key, time.Now(), window)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit for key %s: %w", key, err)
	}
	return nil
}

func bucketKey(key string, now time.Time, window time.Duration) string {
	bucket := now.Unix() / int64(window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%d", key, bucket)
}
