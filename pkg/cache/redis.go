package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	tgerrors "github.com/matzehuels/timegrid/pkg/errors"
)

// redisNamespace prefixes every key so Clear can find timegrid's entries on
// a shared server.
const redisNamespace = "timegrid:"

// clearBatch is the SCAN page size and the number of keys per UNLINK.
const clearBatch = 500

// RedisCache stores entries in Redis, letting several API instances share
// rendered artifacts and fetched feeds.
type RedisCache struct {
	client *redis.Client
}

// RedisOptions configure [NewRedisCache].
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "connect to redis at %s", opts.Addr)
	}
	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, redisNamespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "redis get")
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, redisNamespace+key, data, ttl).Err(); err != nil {
		return tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "redis set")
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, redisNamespace+key).Err(); err != nil {
		return tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "redis del")
	}
	return nil
}

// Clear unlinks every timegrid key and returns how many were removed.
// Keys written by other programs on the same server are left alone.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	removed := 0
	batch := make([]string, 0, clearBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "redis unlink")
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	iter := c.client.Scan(ctx, 0, redisNamespace+"*", clearBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "redis scan")
	}
	return removed, flush()
}

func (c *RedisCache) Close() error { return c.client.Close() }

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
