package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plantops/plantops-backend/pkg/config"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.CounterKey("notifications", "unread", "42")
	if err := client.Set(ctx, key, 7, 5*time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, err := client.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != "7" {
		t.Fatalf("expected stored value, got %q", value)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); !IsNil(err) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, client.LockKey("expiry-sweep"), "worker-0", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, client.LockKey("expiry-sweep"), "worker-1", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to lose, ok=%v err=%v", ok, err)
	}
}

func TestGetInt64(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if _, found, err := client.GetInt64(ctx, "missing"); err != nil || found {
		t.Fatalf("expected miss without error, found=%v err=%v", found, err)
	}
	mock.data["count"] = "12"
	value, found, err := client.GetInt64(ctx, "count")
	if err != nil || !found || value != 12 {
		t.Fatalf("expected 12, got %d found=%v err=%v", value, found, err)
	}
	mock.data["garbage"] = "twelve"
	if _, found, err := client.GetInt64(ctx, "garbage"); err != nil || found {
		t.Fatalf("expected unparsable value to read as a miss, found=%v err=%v", found, err)
	}
}

func TestCompareAndActOnlyForCurrentValue(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.LockKey("cron-worker")
	mock.data[key] = "worker-b"

	extended, err := client.ExpireIfValue(ctx, key, "worker-a", time.Minute)
	if err != nil || extended {
		t.Fatalf("expected no extension for a stale owner, extended=%v err=%v", extended, err)
	}
	deleted, err := client.DeleteIfValue(ctx, key, "worker-a")
	if err != nil || deleted {
		t.Fatalf("expected stale owner not to delete, deleted=%v err=%v", deleted, err)
	}
	if mock.data[key] != "worker-b" {
		t.Fatalf("lease changed by stale owner: %q", mock.data[key])
	}

	extended, err = client.ExpireIfValue(ctx, key, "worker-b", 90*time.Second)
	if err != nil || !extended || mock.ttls[key] != 90*time.Second {
		t.Fatalf("expected owner to extend to 90s, extended=%v ttl=%s err=%v", extended, mock.ttls[key], err)
	}
	deleted, err = client.DeleteIfValue(ctx, key, "worker-b")
	if err != nil || !deleted {
		t.Fatalf("expected owner delete, deleted=%v err=%v", deleted, err)
	}
	if _, ok := mock.data[key]; ok {
		t.Fatal("expected key removed")
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, _, err := client.GetInt64(context.Background(), "k"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	var nilClient *Client
	if err := nilClient.Del(context.Background(), "k"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from nil client, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.CounterKey("notifications", "unread", "42", "admin"); got != "plantops:counter:notifications:unread:42:admin" {
		t.Fatalf("unexpected counter key %s", got)
	}
	if got := client.LockKey("notification-retention"); got != "plantops:lock:notification-retention" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.CounterKey("hits", ""); got != "plantops:counter:hits" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 4, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 4 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

// Eval understands the two compare-and-act scripts the client sends.
func (m *mockCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	if m.data[keys[0]] != args[0] {
		return redis.NewCmdResult(int64(0), nil)
	}
	switch script {
	case deleteIfValueScript:
		delete(m.data, keys[0])
	case expireIfValueScript:
		m.ttls[keys[0]] = time.Duration(args[1].(int64)) * time.Millisecond
	default:
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected script %q", script))
	}
	return redis.NewCmdResult(int64(1), nil)
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
