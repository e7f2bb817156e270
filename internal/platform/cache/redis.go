package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/petcare/catalog-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to address and returns a cache whose entries
// expire after ttl. A zero ttl keeps entries until they are invalidated.
func NewRedisCache(ctx context.Context, address string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        address,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func recordKey(collection, id string) string {
	return fmt.Sprintf("record:%s:%s", collection, id)
}

// Get gets a record from the cache
func (c *RedisCache) Get(ctx context.Context, collection, id string) (domain.Record, error) {
	data, err := c.client.Get(ctx, recordKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Record{}, ErrMiss
	}
	if err != nil {
		return domain.Record{}, err
	}

	var r domain.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Record{}, err
	}
	return r, nil
}

// Set stores a record in the cache
func (c *RedisCache) Set(ctx context.Context, collection string, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, recordKey(collection, record.ID()), data, c.ttl).Err()
}

// Delete removes a record from the cache
func (c *RedisCache) Delete(ctx context.Context, collection, id string) error {
	return c.client.Del(ctx, recordKey(collection, id)).Err()
}
