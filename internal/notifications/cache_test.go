package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plantops/plantops-backend/pkg/access"
	"github.com/plantops/plantops-backend/pkg/enums"
)

type memoryCountStore struct {
	values map[string]int64
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryCountStore() *memoryCountStore {
	return &memoryCountStore{values: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCountStore) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryCountStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = value.(int64)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCountStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryCountStore) CounterKey(parts ...string) string {
	return "test:" + strings.Join(parts, ":")
}

func TestRedisCountCacheKeysByUserAndRole(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCountStore()
	cache := NewRedisCountCache(store, 5*time.Second)
	require.NotNil(t, cache)

	manager := access.Viewer{UserID: 9, Role: enums.RoleProcessingManager}
	admin := access.Viewer{UserID: 9, Role: enums.RoleAdmin}

	require.NoError(t, cache.Set(ctx, manager, 3))
	require.Equal(t, 5*time.Second, store.ttls["test:notifications:unread:9:processing_manager"])

	count, ok, err := cache.Get(ctx, manager)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 3, count)

	_, ok, err = cache.Get(ctx, admin)
	require.NoError(t, err)
	require.False(t, ok, "a different role must not share the cached count")

	require.NoError(t, cache.Invalidate(ctx, manager))
	_, ok, _ = cache.Get(ctx, manager)
	require.False(t, ok)
}

func TestRedisCountCacheDisabled(t *testing.T) {
	require.Nil(t, NewRedisCountCache(newMemoryCountStore(), 0))
	require.Nil(t, NewRedisCountCache(nil, time.Second))
}

func TestRedisCountCachePropagatesStoreErrors(t *testing.T) {
	store := newMemoryCountStore()
	store.getErr = errors.New("connection refused")
	cache := NewRedisCountCache(store, time.Second)

	_, _, err := cache.Get(context.Background(), access.Viewer{UserID: 1, Role: enums.RoleViewer})
	require.Error(t, err)
}
