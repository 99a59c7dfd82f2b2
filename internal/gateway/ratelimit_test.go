package gateway_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventix/internal/gateway"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRateLimiter_AllowsWithinCapacity(t *testing.T) {
	client := newTestRedis(t)
	rl := gateway.NewRateLimiter(client, zap.NewNop())

	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow(context.Background(), "client-1"))
	}
}

func TestRateLimiter_BlocksOverCapacity(t *testing.T) {
	client := newTestRedis(t)
	rl := gateway.NewRateLimiter(client, zap.NewNop())

	for i := 0; i < 100; i++ {
		rl.Allow(context.Background(), "client-1")
	}
	require.False(t, rl.Allow(context.Background(), "client-1"))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	client := newTestRedis(t)
	rl := gateway.NewRateLimiter(client, zap.NewNop())

	for i := 0; i < 100; i++ {
		rl.Allow(context.Background(), "client-1")
	}
	require.True(t, rl.Allow(context.Background(), "client-2"))
}

func TestRateLimiter_FailsOpenWhenStoreDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	rl := gateway.NewRateLimiter(client, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.True(t, rl.Allow(ctx, "client-1"))
}
