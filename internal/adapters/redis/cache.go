package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"roomrate/internal/adapters/observability"
)

// Cache is the remote tier of the hybrid cache. Callers bound every call
// with a context deadline; a slow or down Redis degrades to the local tier.
type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// NewFromClient wires an existing client (tests use miniredis here).
func NewFromClient(c *redis.Client) *Cache { return &Cache{c: c} }

func (r *Cache) Name() string { return "redis" }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(v, dst); err != nil {
		// malformed payload is a miss, not an error
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	observability.ObserveCache("redis", "hit")
	return true, nil
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key, b, ttl).Err()
}

func (r *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, keys...).Err()
}

// DelPrefix walks the keyspace with SCAN (never KEYS), collects every match,
// then deletes in batches. Deleting mid-iteration would shift the cursor on
// backends with index-based cursors and skip keys, so the scan completes
// first. Partial progress counts; the error reports where it stopped.
func (r *Cache) DelPrefix(ctx context.Context, prefix string) (int, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := r.c.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			return 0, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	var deleted int
	for start := 0; start < len(keys); start += 200 {
		end := start + 200
		if end > len(keys) {
			end = len(keys)
		}
		n, err := r.c.Del(ctx, keys[start:end]...).Result()
		deleted += int(n)
		if err != nil {
			return deleted, err
		}
	}
	if deleted > 0 {
		observability.ObserveCache("redis", "del")
	}
	return deleted, nil
}

// Ping lets main fail fast on startup misconfiguration.
func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }
