package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/codequest-labs/ai-tutorial-progress/internal/config"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/store"
)

// InitStoreBackend opens the backend selected by cfg.StoreBackend.
func InitStoreBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logrus.Warn("using in-memory store, progress will not survive a restart")
		return store.NewMemoryBackend(), nil
	case config.BackendRedis:
		client, err := InitRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		ttl := time.Duration(cfg.RedisKeyTTLDays) * 24 * time.Hour
		return store.NewRedisBackend(client, store.RedisBackendConfig{TTL: ttl}), nil
	case config.BackendSQLite:
		backend, err := store.NewSQLiteBackend(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store at %s: %w", cfg.SQLitePath, err)
		}
		logrus.Infof("using sqlite store at %s", cfg.SQLitePath)
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

// InitRedisClient connects to Redis, retrying the initial ping with
// exponential backoff.
func InitRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	retry := backoff.WithContext(backoff.WithMaxRetries(b, uint64(cfg.RedisMaxRetries)), ctx)

	err := backoff.Retry(func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			logrus.Warnf("Redis connection failed: %v, retrying...", err)
			return err
		}
		return nil
	}, retry)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr(), err)
	}

	logrus.Infof("Redis client connected to %s", cfg.RedisAddr())
	return client, nil
}
