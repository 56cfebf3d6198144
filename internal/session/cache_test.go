package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() { _ = rdb.Close() })

	return NewCacheWithClient(rdb, time.Minute)
}

func TestCachePutHasDel(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if c.Has(ctx, "u1", "auth", "hash1") {
		t.Fatal("Has() true before Put()")
	}

	c.Put(ctx, "u1", "auth", "hash1")

	if !c.Has(ctx, "u1", "auth", "hash1") {
		t.Fatal("Has() false after Put()")
	}

	// a different kind must not match the cached entry
	if c.Has(ctx, "u1", "other", "hash1") {
		t.Fatal("Has() matched a different kind")
	}

	c.Del(ctx, "u1", "hash1")

	if c.Has(ctx, "u1", "auth", "hash1") {
		t.Fatal("Has() true after Del()")
	}
}

func TestCacheIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	c.Put(ctx, "u1", "auth", "hash1")

	if c.Has(ctx, "u2", "auth", "hash1") {
		t.Fatal("Has() matched another user's session")
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	ctx := context.Background()

	var c *Cache

	c.Put(ctx, "u1", "auth", "hash1")
	c.Del(ctx, "u1", "hash1")

	if c.Has(ctx, "u1", "auth", "hash1") {
		t.Fatal("nil cache reported a hit")
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("nil cache Ping() = %v", err)
	}
}
