package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

type ActionLogRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ActionLogRepository = (*ActionLogRepository)(nil)

func scanActionLog(row pgx.Row) (*domain.ActionLog, error) {
	var e domain.ActionLog
	if err := row.Scan(&e.ID, &e.UserID, &e.Action, &e.Timestamp); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ActionLogRepository) Append(ctx context.Context, entry *domain.ActionLog) (*domain.ActionLog, error) {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	e, err := scanActionLog(r.pool.QueryRow(ctx,
		`INSERT INTO action_logs (user_id, action, logged_at) VALUES ($1, $2, $3) RETURNING id, user_id, action, logged_at`,
		entry.UserID, entry.Action, ts))
	if err != nil {
		return nil, domain.StorageError("append action log", err)
	}
	return e, nil
}

func (r *ActionLogRepository) Recent(ctx context.Context, limit int) ([]*domain.ActionLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, action, logged_at FROM action_logs ORDER BY logged_at DESC, id DESC LIMIT $1`, limitArg(limit))
	if err != nil {
		return nil, domain.StorageError("recent action logs", err)
	}
	defer rows.Close()

	out := []*domain.ActionLog{}
	for rows.Next() {
		e, err := scanActionLog(rows)
		if err != nil {
			return nil, domain.StorageError("recent action logs", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("recent action logs", err)
	}
	return out, nil
}
