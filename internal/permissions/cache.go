package permissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "permissions:version"

// Cache stores wire payloads per actor in Redis under a versioned key.
// A nil Cache or nil client disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache generation, initialising it when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	return ver, err
}

func (c *Cache) key(ctx context.Context, actor string) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("permissions:set:%s:%d", actor, ver), nil
}

// Get returns the cached set for actor. The bool is false on a miss.
func (c *Cache) Get(ctx context.Context, actor string) (Set, bool, error) {
	if !c.enabled() {
		return Set{}, false, nil
	}
	key, err := c.key(ctx, actor)
	if err != nil {
		return Set{}, false, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Set{}, false, nil
	}
	if err != nil {
		return Set{}, false, err
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Set{}, false, err
	}
	set, _ := SetFromPayload(payload)
	return set, true, nil
}

// Put stores set for actor with the configured TTL.
func (c *Cache) Put(ctx context.Context, actor string, set Set) error {
	if !c.enabled() {
		return nil
	}
	key, err := c.key(ctx, actor)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(PayloadFromSet(set))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops the cached set of one actor.
func (c *Cache) Invalidate(ctx context.Context, actor string) error {
	if !c.enabled() {
		return nil
	}
	key, err := c.key(ctx, actor)
	if err != nil {
		return err
	}
	return c.client.Del(ctx, key).Err()
}

// Bump invalidates every actor at once by moving to a new generation.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
