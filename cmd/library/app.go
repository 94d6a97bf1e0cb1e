package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/api"
	"github.com/biblioteca/library-system/internal/api/handler"
	"github.com/biblioteca/library-system/internal/core/ports"
	"github.com/biblioteca/library-system/internal/core/service"
	"github.com/biblioteca/library-system/internal/infrastructure/config"
	"github.com/biblioteca/library-system/internal/infrastructure/db/memory"
	"github.com/biblioteca/library-system/internal/infrastructure/db/postgres"
	"github.com/biblioteca/library-system/internal/infrastructure/db/redis"
	"github.com/biblioteca/library-system/pkg/logger"
)

const serviceName = "library"

// app holds the process-wide dependencies shared by every subcommand.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	pool *pgxpool.Pool   // nil with the memory store
	rdb  *goredis.Client // nil when Redis is not reachable in memory mode

	books ports.BookRepository
	users ports.UserRepository
	loans ports.LoanRepository
	logs  ports.ActionLogRepository
}

// bootstrap loads configuration, initialises the logger and opens the
// configured store. Postgres deployments are migrated before use.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	a := &app{cfg: cfg, log: log}

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{
			URL:           cfg.Postgres.URL,
			MaxConns:      cfg.Postgres.MaxConns,
			MinConns:      cfg.Postgres.MinConns,
			RetryAttempts: cfg.Postgres.RetryAttempts,
			RetryInterval: cfg.Postgres.RetryInterval,
		})
		if err != nil {
			return nil, err
		}
		a.pool = pool
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			a.Close()
			return nil, err
		}
		store := postgres.NewStore(pool)
		a.books, a.users, a.loans, a.logs = store.Books(), store.Users(), store.Loans(), store.ActionLogs()
		log.Info().Msg("postgres store ready")
	default:
		store := memory.New()
		a.books, a.users, a.loans, a.logs = store.Books(), store.Users(), store.Loans(), store.ActionLogs()
		log.Warn().Msg("using in-memory store, data is lost on exit")
	}

	return a, nil
}

// connectRedis opens the Redis client backing idempotency keys and the
// login limiter. It is required with Postgres and optional otherwise.
func (a *app) connectRedis(ctx context.Context) error {
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		if a.cfg.Store == config.StoreMemory {
			a.log.Warn().Err(err).Msg("redis unavailable, idempotency keys and login throttling disabled")
			return nil
		}
		return err
	}
	a.rdb = rdb
	return nil
}

// services wires the core use cases over the opened store.
func (a *app) services() (api.Services, *service.UserService) {
	var idem service.IdempotencyStore
	if a.rdb != nil {
		idem = redis.NewIdempotencyStore(a.rdb, a.cfg.Idempotent.TTL)
	}

	loans := service.NewLoanService(a.loans, a.books, a.users, idem, a.log)
	users := service.NewUserService(a.users, a.log)
	return api.Services{
		Auth:       service.NewAuthService(a.users, a.cfg.JWTSecret, a.cfg.TokenTTL),
		Catalog:    service.NewCatalogService(a.books, a.log),
		Loans:      loans,
		Users:      users,
		Dashboards: service.NewDashboardService(a.books, a.users, a.loans, a.logs, loans),
		Audit:      service.NewAuditService(a.logs, a.log),
	}, users
}

// routerOptions builds readiness checks and the login limiter.
func (a *app) routerOptions() (api.Options, error) {
	opts := api.Options{
		JWTSecret: a.cfg.JWTSecret,
		Checks:    map[string]handler.Check{},
		Logger:    a.log,
	}
	if a.pool != nil {
		opts.Checks["postgres"] = postgres.Healthcheck(a.pool)
	}
	if a.rdb != nil {
		opts.Checks["redis"] = redis.Healthcheck(a.rdb)
		limiter, err := redis.NewLoginLimiter(a.rdb, a.cfg.RateLimit.LoginLimit, a.cfg.RateLimit.LoginWindow)
		if err != nil {
			return api.Options{}, err
		}
		opts.LoginLimiter = limiter
	}
	return opts, nil
}

// requirePersistent rejects commands whose effect would vanish with the
// process.
func (a *app) requirePersistent(cmd string) error {
	if a.pool == nil {
		return fmt.Errorf("%s requires STORE=%s", cmd, config.StorePostgres)
	}
	return nil
}

func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			a.log.Error().Err(err).Msg("failed to close redis client")
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
