package presence

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTracker(t *testing.T) (*Tracker, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewTracker(client, time.Minute), mr
}

func TestTracker_OnlineOffline(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	online, err := tracker.IsOnline(ctx, 1)
	require.NoError(t, err)
	assert.False(t, online, "unknown user is offline")

	require.NoError(t, tracker.SetOnline(ctx, 1))

	online, err = tracker.IsOnline(ctx, 1)
	require.NoError(t, err)
	assert.True(t, online)

	require.NoError(t, tracker.SetOffline(ctx, 1))

	online, err = tracker.IsOnline(ctx, 1)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestTracker_TTLExpiry(t *testing.T) {
	tracker, mr := setupTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.SetOnline(ctx, 2))

	mr.FastForward(2 * time.Minute)

	online, err := tracker.IsOnline(ctx, 2)
	require.NoError(t, err)
	assert.False(t, online, "presence expires without heartbeats")
}
