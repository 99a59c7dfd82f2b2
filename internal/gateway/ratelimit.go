package gateway

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window request counter backed by Redis, shared
// across every gateway instance so a client's limit is enforced
// regardless of which instance handles a given request.
type RateLimiter struct {
	client   *redis.Client
	window   time.Duration
	capacity int64
	logger   *zap.Logger
}

// NewRateLimiter builds a RateLimiter with a 60s window and a capacity
// of 100 requests per window per key.
func NewRateLimiter(client *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{client: client, window: 60 * time.Second, capacity: 100, logger: logger}
}

// Allow reports whether key (typically client IP or user id) is within
// its quota for the current window. On Redis unavailability, Allow
// fails open: a rate limiter that is down should not take the whole
// gateway down with it.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	redisKey := "ratelimit:" + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Warn("rate limiter store unavailable, failing open", zap.Error(err))
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, redisKey, l.window)
	}
	return count <= l.capacity
}
