package notifications

import (
	"context"
	"strconv"
	"time"

	"github.com/plantops/plantops-backend/pkg/access"
)

// CountCache keeps unread counts for a few seconds to absorb polling.
type CountCache interface {
	Get(ctx context.Context, viewer access.Viewer) (int64, bool, error)
	Set(ctx context.Context, viewer access.Viewer, count int64) error
	Invalidate(ctx context.Context, viewer access.Viewer) error
}

type countStore interface {
	GetInt64(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CounterKey(parts ...string) string
}

type redisCountCache struct {
	store countStore
	ttl   time.Duration
}

// NewRedisCountCache returns a Redis-backed cache. A non-positive ttl
// disables caching and returns nil.
func NewRedisCountCache(store countStore, ttl time.Duration) CountCache {
	if store == nil || ttl <= 0 {
		return nil
	}
	return &redisCountCache{store: store, ttl: ttl}
}

func (c *redisCountCache) key(viewer access.Viewer) string {
	return c.store.CounterKey("notifications", "unread", strconv.FormatInt(viewer.UserID, 10), string(viewer.Role))
}

func (c *redisCountCache) Get(ctx context.Context, viewer access.Viewer) (int64, bool, error) {
	return c.store.GetInt64(ctx, c.key(viewer))
}

func (c *redisCountCache) Set(ctx context.Context, viewer access.Viewer, count int64) error {
	return c.store.Set(ctx, c.key(viewer), count, c.ttl)
}

func (c *redisCountCache) Invalidate(ctx context.Context, viewer access.Viewer) error {
	return c.store.Del(ctx, c.key(viewer))
}
