package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"question_rotation_service/internal/domain/rotation"

	rediscache "github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// prefix for all Redis keys this cache uses
const lookupKeyPrefix = "current-question/"

// Short in-process hot layer on top of Redis. Kept well below any cycle
// duration so the staleness bound stays dominated by the per-entry TTL.
const localHotTTL = 10 * time.Second
const localHotSize = 10_000

// RedisLookupCache implements rotation.Cache on Redis, with a small
// in-process TinyLFU layer for hot regions (provided by the redis cache
// client library).
type RedisLookupCache struct {
	data *rediscache.Cache
}

var _ rotation.Cache = (*RedisLookupCache)(nil)

// NewRedisLookupCache connects to Redis using a redis URL and verifies
// connectivity with a ping.
func NewRedisLookupCache(redisURL string) (*RedisLookupCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("could not configure redis lookup cache: %w", err)
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to redis lookup cache: %w", err)
	}
	data := rediscache.New(&rediscache.Options{
		Redis:      rdb,
		LocalCache: rediscache.NewTinyLFU(localHotSize, localHotTTL),
	})
	return &RedisLookupCache{data: data}, nil
}

func lookupKey(regionID int64) string {
	return lookupKeyPrefix + strconv.FormatInt(regionID, 10)
}

func (c *RedisLookupCache) GetCurrent(ctx context.Context, regionID int64) (*rotation.CurrentQuestion, error) {
	var cur rotation.CurrentQuestion
	err := c.data.Get(ctx, lookupKey(regionID), &cur)
	if err == rediscache.ErrCacheMiss {
		return nil, rotation.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("lookup cache read failed: %w", err)
	}
	return &cur, nil
}

func (c *RedisLookupCache) SetCurrent(ctx context.Context, current *rotation.CurrentQuestion, ttl time.Duration) error {
	err := c.data.Set(&rediscache.Item{
		Ctx:   ctx,
		Key:   lookupKey(current.RegionID),
		Value: current,
		TTL:   ttl,
	})
	if err != nil {
		return fmt.Errorf("lookup cache write failed for region %d: %w", current.RegionID, err)
	}
	return nil
}

// SetCurrentBulk writes the full post-rotation snapshot. Individual key
// failures do not stop the rest of the snapshot; the first error is
// returned so the caller can log the degradation.
func (c *RedisLookupCache) SetCurrentBulk(ctx context.Context, entries []*rotation.CurrentQuestion, ttl time.Duration) error {
	var firstErr error
	for _, cur := range entries {
		if err := c.SetCurrent(ctx, cur, ttl); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
