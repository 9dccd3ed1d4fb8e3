package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// redisKeyPrefix namespaces every key this module writes to a shared Redis.
const redisKeyPrefix = "ai_tutorial:"

// RedisBackend stores values as plain Redis strings.
type RedisBackend struct {
	client *redis.Client
	cfg    RedisBackendConfig
}

// RedisBackendConfig controls key expiry. A zero TTL keeps keys forever.
type RedisBackendConfig struct {
	TTL time.Duration
}

// NewRedisBackend creates a new Redis-backed store.
func NewRedisBackend(client *redis.Client, cfg RedisBackendConfig) *RedisBackend {
	return &RedisBackend{
		client: client,
		cfg:    cfg,
	}
}

func makeRedisKey(key string) string {
	return fmt.Sprintf("%s%s", redisKeyPrefix, key)
}

// Get retrieves the value stored under key.
func (r *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, makeRedisKey(key)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Set writes the value under key, applying the configured TTL.
func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, makeRedisKey(key), value, r.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	logrus.Debugf("stored %s in redis (ttl %v)", key, r.cfg.TTL)
	return nil
}

// Delete removes key.
func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, makeRedisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection to Redis.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
