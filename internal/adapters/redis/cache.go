package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"hotel_haven/internal/adapters/observability"
)

// namespace prefixes every key so the service can share a redis
// instance without colliding with other tenants.
const namespace = "haven"

type Cache struct {
	c    *redis.Client
	name string
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		c:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		name: namespace,
	}
}

func (r *Cache) key(k string) string { return r.name + ":" + k }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		observability.ObserveCache(r.name, "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache(r.name, "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, _ := json.Marshal(v)
	observability.ObserveCache(r.name, "set")
	return r.c.Set(ctx, r.key(key), b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache(r.name, "del")
	return r.c.Del(ctx, r.key(key)).Err()
}

// DelPrefix removes every key under the prefix via SCAN, so whole key
// families (per-room review lists) can be invalidated without knowing
// each member.
func (r *Cache) DelPrefix(ctx context.Context, prefix string) error {
	observability.ObserveCache(r.name, "del")
	var cursor uint64
	for {
		keys, next, err := r.c.Scan(ctx, cursor, r.key(prefix)+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.c.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
