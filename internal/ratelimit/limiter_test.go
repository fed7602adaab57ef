package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/repairdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestMemoryLimiterExhaustsAndRefills(t *testing.T) {
	l := NewMemoryLimiter(3)
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()
	key := PublicKey("10.0.0.1", "1")

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 3, res.Limit)
	assert.InDelta(t, float64(20*time.Second), float64(res.RetryAfter), float64(time.Millisecond))

	other, err := l.Allow(ctx, PublicKey("10.0.0.1", "2"))
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	now = now.Add(21 * time.Second)
	res, err = l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryLimiterDropsIdleBuckets(t *testing.T) {
	l := NewMemoryLimiter(60)
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_, err := l.Allow(context.Background(), "a")
	require.NoError(t, err)
	now = now.Add(5 * time.Minute)
	_, err = l.Allow(context.Background(), "b")
	require.NoError(t, err)

	assert.NotContains(t, l.buckets, "a")
	assert.Contains(t, l.buckets, "b")
}

func TestMemoryLimiterHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryLimiter(10).Allow(ctx, "k")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 120*time.Second, defaultBucketTTL(0.5, 30))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 30))
	assert.Equal(t, time.Second, defaultBucketTTL(1000, 1))
}

func TestNewLimiterWithoutRedisIsInMemory(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	l := NewLimiter(lc, config.Config{PublicRateLimitPerMinute: 30}, zap.NewNop())

	_, ok := l.(*MemoryLimiter)
	assert.True(t, ok)
}

func TestNewLimiterWithRedisAddr(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	l := NewLimiter(lc, config.Config{RedisAddr: "127.0.0.1:6379", PublicRateLimitPerMinute: 30}, zap.NewNop())

	rl, ok := l.(*RedisLimiter)
	require.True(t, ok)
	assert.Equal(t, 30, rl.burst)
	assert.InDelta(t, 0.5, rl.rate, 1e-9)
}
