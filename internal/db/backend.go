package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/store"
	"github.com/token-ledger/backend/migrations"
	"go.uber.org/zap"
)

// Backend is the set of connections a process needs. Redis is nil when
// REDIS_URL is empty and Pool is nil unless the Postgres store is used.
type Backend struct {
	Store store.Store
	Redis *redis.Client
	Pool  *pgxpool.Pool
}

// Open connects to whatever cfg.StoreBackend needs, applying migrations
// for Postgres. Redis is opened whenever it is configured since events and
// rate limits use it too.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Backend, error) {
	b := &Backend{}

	if cfg.RedisURL != "" {
		rdb, err := NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, err
		}
		b.Redis = rdb
	}

	switch cfg.StoreBackend {
	case config.StoreRedis:
		if b.Redis == nil {
			b.Close()
			return nil, fmt.Errorf("store backend redis requires REDIS_URL")
		}
		b.Store = store.NewRedisStore(b.Redis, cfg.RedisPrefix)
	case config.StorePostgres:
		pool, err := NewPostgresPool(ctx, cfg.PostgresDSN, log)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Pool = pool
		if err := RunMigrations(ctx, pool, migrations.FS, log); err != nil {
			b.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		b.Store = store.NewPostgresStore(pool)
	default:
		b.Store = store.NewMemory()
	}

	log.Info("store backend ready", zap.String("backend", cfg.StoreBackend), zap.Bool("redis", b.Redis != nil))
	return b, nil
}

func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
}
