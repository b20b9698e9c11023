package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *StatementCache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("starting miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, time.Minute)
}

func TestCacheMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, Key("d1", "s1", "FLAT", "q1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected cache miss")
	}
}

func TestCacheSetThenGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	key := Key("d1", "s1", "FLAT", "q1")
	if err := c.Set(ctx, key, "SELECT 1;"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "SELECT 1;" {
		t.Errorf("expected 'SELECT 1;', got %q", got)
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	k1 := Key("d1", "s1", "FLAT", "q1")
	k2 := Key("d1", "s1", "FLAT", "q1")
	if k1 != k2 {
		t.Errorf("expected identical keys, got %q and %q", k1, k2)
	}

	k3 := Key("d2", "s1", "FLAT", "q1")
	if k1 == k3 {
		t.Error("expected different domain hashes to produce different keys")
	}
}
