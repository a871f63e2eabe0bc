package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/socialgate/internal/account"
	"github.com/dropDatabas3/socialgate/internal/account/pg"
	"github.com/dropDatabas3/socialgate/internal/cache"
	"github.com/dropDatabas3/socialgate/internal/config"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/rate"
	migrations "github.com/dropDatabas3/socialgate/migrations/postgres"
)

// OpenInfra abre el Credential Store, el Account Directory y el limiter
// según la configuración. cleanup cierra todo lo abierto.
func OpenInfra(ctx context.Context, cfg *config.Config) (Deps, func() error, error) {
	log := logger.From(ctx).With(logger.Layer("app"), logger.Component("infra"))
	var (
		deps    Deps
		closers []func() error
	)
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	switch cfg.Cache.Kind {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		closers = append(closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = cleanup()
			return Deps{}, nil, fmt.Errorf("redis ping: %w", err)
		}
		deps.Store = cache.NewRedisWithClient(rdb, cfg.Cache.Redis.Prefix)
		deps.Limiter = rate.NewRedisLimiter(rdb, cfg.Cache.Redis.Prefix+"rl:", cfg.Rate.Login.Limit, cfg.RateWindow())
		log.Info("credential store ready", logger.String("kind", "redis"))
	default:
		deps.Store = cache.NewMemory("")
		closers = append(closers, deps.Store.Close)
		deps.Limiter = rate.NewMemoryLimiter("rl:", cfg.Rate.Login.Limit, cfg.RateWindow())
		log.Warn("credential store is in-process; revocations are lost on restart", logger.String("kind", "memory"))
	}

	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pg.Connect(ctx, pg.PoolConfig{
			DSN:             cfg.Storage.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			MaxConnLifetime: cfg.ConnMaxLifetime(),
		})
		if err != nil {
			_ = cleanup()
			return Deps{}, nil, err
		}
		closers = append(closers, func() error { pool.Close(); return nil })
		deps.Accounts = pg.NewDirectory(pool)
		log.Info("account directory ready", logger.String("driver", "postgres"))
	default:
		deps.Accounts = account.NewMemoryDirectory()
		log.Warn("account directory is in-process", logger.String("driver", "memory"))
	}

	return deps, cleanup, nil
}

// RunMigrations aplica las migraciones embebidas del Account Directory.
func RunMigrations(ctx context.Context, cfg *config.Config) (*pg.MigrationResult, error) {
	if cfg.Storage.Driver != "postgres" {
		return nil, fmt.Errorf("migrate: storage.driver is %q, postgres required", cfg.Storage.Driver)
	}
	pool, err := pg.Connect(ctx, pg.PoolConfig{DSN: cfg.Storage.DSN, MaxConns: 2})
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return pg.Migrate(ctx, pool, migrations.PostgresFS, ".")
}
