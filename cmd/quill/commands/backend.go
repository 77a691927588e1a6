package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dyluth/quill/internal/config"
	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/internal/store/memory"
	"github.com/dyluth/quill/internal/store/postgres"
	"github.com/dyluth/quill/internal/store/redisstore"
	"github.com/dyluth/quill/pkg/posts"
)

// openStore builds the configured backend. The returned cleanup func is
// never nil and must be called once the store is no longer used.
func openStore(ctx context.Context, cfg config.StoreConfig, opts store.Options, logger *zap.Logger) (posts.Store, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendMemory, "":
		logger.Info("using in-memory store")
		return memory.New(opts), noop, nil

	case config.BackendRedis:
		redisOpts, err := cfg.Redis.Options()
		if err != nil {
			return nil, noop, err
		}
		s, err := redisstore.New(redisOpts, cfg.Redis.Instance, opts)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create redis store: %w", err)
		}
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, noop, fmt.Errorf("failed to connect to redis at %s: %w", redisOpts.Addr, err)
		}
		logger.Info("using redis store",
			zap.String("addr", redisOpts.Addr),
			zap.String("instance", s.InstanceName()))
		return s, func() { s.Close() }, nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, postgres.PoolOptions{MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, noop, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		logger.Info("using postgres store")
		return postgres.New(pool, opts), pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
