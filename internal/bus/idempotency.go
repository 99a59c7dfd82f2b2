package bus

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore records which event_ids a consumer has already
// processed so a redelivered duplicate is a no-op. Backed by Redis SETNX
// with a TTL bounding how long the dedup window stays open, mirroring
// the teacher's pkg/cache Redis usage for atomic counters.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewIdempotencyStore builds a store scoped to one consumer (serviceName
// is part of the key so two services don't collide over the same
// event_id from different domains).
func NewIdempotencyStore(client *redis.Client, serviceName string, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl, prefix: "idempotency:" + serviceName + ":"}
}

// SeenOrMark atomically marks eventID as processed and reports whether it
// had already been marked (i.e. this delivery is a duplicate).
func (s *IdempotencyStore) SeenOrMark(ctx context.Context, eventID string) (alreadySeen bool, err error) {
	ok, err := s.client.SetNX(ctx, s.prefix+eventID, 1, s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
