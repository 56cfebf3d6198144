package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a redis-backed positive cache of active sessions. Entries are
// keyed by (userID, tokenHash) with the capability kind as the value, and
// expire after a short TTL so the database stays the source of truth.
//
// A nil *Cache is valid and caches nothing, which keeps the store usable
// when no redis address is configured.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewCache(cfg CacheConfig) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return NewCacheWithClient(rdb, cfg.TTL)
}

func NewCacheWithClient(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) key(userID, tokenHash string) string {
	return "session:" + userID + ":" + tokenHash
}

// Put records a session; cache errors are swallowed, the repo still holds it.
func (c *Cache) Put(ctx context.Context, userID, kind, tokenHash string) {
	if c == nil {
		return
	}

	_ = c.rdb.Set(ctx, c.key(userID, tokenHash), kind, c.ttl).Err()
}

func (c *Cache) Has(ctx context.Context, userID, kind, tokenHash string) bool {
	if c == nil {
		return false
	}

	got, err := c.rdb.Get(ctx, c.key(userID, tokenHash)).Result()

	// redis.Nil is a plain miss; any other error also falls through to the repo
	if err != nil {
		return false
	}

	return got == kind
}

func (c *Cache) Del(ctx context.Context, userID, tokenHash string) {
	if c == nil {
		return
	}

	_ = c.rdb.Del(ctx, c.key(userID, tokenHash)).Err()
}

// Ping checks redis connectivity for the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}

	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}

	return c.rdb.Close()
}
