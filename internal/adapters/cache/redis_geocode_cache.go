package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"temple-locator-service/internal/platform/obs"
	"temple-locator-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const geocodeKeyPrefix = "geocode:"

// RedisGeocodeCache stores geocoder answers as JSON strings with a TTL.
type RedisGeocodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.GeocodeCache = (*RedisGeocodeCache)(nil)

// NewRedisGeocodeCache returns a cache over client. A non-positive ttl keeps
// entries until Redis evicts them.
func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisGeocodeCache{client: client, ttl: ttl}
}

func (c *RedisGeocodeCache) Get(ctx context.Context, query string) (_ []ports.GeocodeResult, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.redis.Get")(&err)

	if c.client == nil {
		return nil, false, errors.New("geocode cache: redis client is nil")
	}

	raw, err := c.client.Get(ctx, geocodeKeyPrefix+query).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get geocode cache %q: %w", query, err)
	}

	var results []ports.GeocodeResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("get geocode cache %q: decode: %w", query, err)
	}

	return results, true, nil
}

func (c *RedisGeocodeCache) Put(ctx context.Context, query string, results []ports.GeocodeResult) error {
	if c.client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("put geocode cache %q: encode: %w", query, err)
	}

	if err := c.client.Set(ctx, geocodeKeyPrefix+query, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("put geocode cache %q: %w", query, err)
	}

	return nil
}
