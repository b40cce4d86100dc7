package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"worklog/internal/platform/config"
	"worklog/internal/platform/db"
	"worklog/internal/platform/storage"
)

// backend is the opened record store plus what the server needs around it.
type backend struct {
	store storage.Store
	redis *redis.Client
	ready func(ctx context.Context) error
	close func()
}

func openBackend(ctx context.Context, cfg config.Config) (backend, error) {
	log := zap.L().Named("storage")
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Info("using in-memory store")
		return backend{store: storage.NewMemoryStore(), ready: alwaysReady, close: func() {}}, nil

	case config.DriverPostgres:
		store, pool, err := db.OpenStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return backend{}, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info("using postgres store")
		b := backend{store: store, ready: pool.Ping, close: pool.Close}
		return withOptionalRedis(ctx, b, cfg)

	case config.DriverRedis:
		client, err := dialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return backend{}, err
		}
		log.Info("using redis store", zap.String("prefix", cfg.RedisPrefix))
		return backend{
			store: storage.NewRedisStore(client, cfg.RedisPrefix),
			redis: client,
			ready: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close: func() { _ = client.Close() },
		}, nil

	default:
		store, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return backend{}, fmt.Errorf("open file store: %w", err)
		}
		log.Info("using file store", zap.String("dir", cfg.DataDir))
		b := backend{
			store: store,
			ready: func(context.Context) error {
				_, err := os.Stat(cfg.DataDir)
				return err
			},
			close: func() {},
		}
		return withOptionalRedis(ctx, b, cfg)
	}
}

// withOptionalRedis attaches a redis client for idempotency keys when
// REDIS_URL is set alongside a non-redis store.
func withOptionalRedis(ctx context.Context, b backend, cfg config.Config) (backend, error) {
	if cfg.RedisURL == "" {
		return b, nil
	}
	client, err := dialRedis(ctx, cfg.RedisURL)
	if err != nil {
		b.close()
		return backend{}, err
	}
	closeStore := b.close
	b.redis = client
	b.close = func() {
		_ = client.Close()
		closeStore()
	}
	return b, nil
}

func dialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func alwaysReady(context.Context) error { return nil }
