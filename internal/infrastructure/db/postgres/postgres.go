// Package postgres implements the repository ports on PostgreSQL through a
// pgx connection pool. Every composite operation runs in one transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biblioteca/library-system/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	dialect        = "postgres"
)

// Config captures the settings required to open the pool.
type Config struct {
	URL           string
	MaxConns      int32
	MinConns      int32
	RetryAttempts int
	RetryInterval time.Duration
}

// Connect opens a pgx pool and verifies it with a ping, retrying with a
// linear backoff while the database comes up.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	poolCfg.ConnConfig.ConnectTimeout = defaultTimeout

	attempts := max(cfg.RetryAttempts, 1)
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = time.Second
	}

	var lastErr error
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i+1) * interval):
			}
		}
	}
	return nil, fmt.Errorf("postgres connect: %w", lastErr)
}

// Healthcheck returns a readiness probe for the pool.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return domain.StorageError("postgres ping", err)
		}
		return nil
	}
}

// Store groups the repositories sharing one pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Books() *BookRepository           { return &BookRepository{pool: s.pool} }
func (s *Store) Users() *UserRepository           { return &UserRepository{pool: s.pool} }
func (s *Store) Loans() *LoanRepository           { return &LoanRepository{pool: s.pool} }
func (s *Store) ActionLogs() *ActionLogRepository { return &ActionLogRepository{pool: s.pool} }

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withTx runs fn in a transaction, rolling back on any error.
func withTx(ctx context.Context, pool *pgxpool.Pool, op string, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return domain.StorageError(op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.StorageError(op, err)
	}
	return nil
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// insertAudit writes entry inside the caller's transaction; nil is a no-op.
func insertAudit(ctx context.Context, q querier, entry *domain.ActionLog) error {
	if entry == nil {
		return nil
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if _, err := q.Exec(ctx, `INSERT INTO action_logs (user_id, action, logged_at) VALUES ($1, $2, $3)`, entry.UserID, entry.Action, ts); err != nil {
		return domain.StorageError("insert action log", err)
	}
	return nil
}

// limitArg maps a non-positive limit to NULL, which Postgres reads as no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
