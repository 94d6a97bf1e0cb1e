package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, role, active, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User, audit *domain.ActionLog) (*domain.User, error) {
	var created *domain.User
	err := withTx(ctx, r.pool, "create user", func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash, first_name, last_name, role, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+userColumns,
			u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Role), u.Active)
		var err error
		if created, err = scanUser(row); err != nil {
			switch pgCode(err) {
			case codeUniqueViolation:
				return domain.ErrUserExists
			case codeCheckViolation:
				return fmt.Errorf("create user: %w", domain.ErrValidation)
			}
			return domain.StorageError("create user", err)
		}
		return insertAudit(ctx, tx, audit)
	})
	return created, err
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
		}
		return nil, domain.StorageError("find user", err)
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
		}
		return nil, domain.StorageError("find user", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, domain.StorageError("list users", err)
	}
	defer rows.Close()

	out := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.StorageError("list users", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list users", err)
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, domain.StorageError("count users", err)
	}
	return n, nil
}

// lockAdmins takes row locks on every admin and returns how many there are,
// so concurrent demotions and deletions serialize on the last-admin check.
func lockAdmins(ctx context.Context, tx pgx.Tx) (int, error) {
	rows, err := tx.Query(ctx, `SELECT id FROM users WHERE role = 'admin' ORDER BY id FOR UPDATE`)
	if err != nil {
		return 0, domain.StorageError("lock admins", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, domain.StorageError("lock admins", err)
	}
	return len(ids), nil
}

func lockUserRole(ctx context.Context, tx pgx.Tx, id int64) (domain.Role, error) {
	var role string
	if err := tx.QueryRow(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&role); err != nil {
		if isNoRows(err) {
			return "", fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
		}
		return "", domain.StorageError("lock user", err)
	}
	return domain.Role(role), nil
}

func (r *UserRepository) SetRole(ctx context.Context, id int64, from, to domain.Role, audit *domain.ActionLog) (*domain.User, error) {
	demoting := from.IsAdmin() && !to.IsAdmin()

	var updated *domain.User
	err := withTx(ctx, r.pool, "set role", func(tx pgx.Tx) error {
		admins := 0
		if demoting {
			n, err := lockAdmins(ctx, tx)
			if err != nil {
				return err
			}
			admins = n
		}
		current, err := lockUserRole(ctx, tx, id)
		if err != nil {
			return err
		}
		if current != from {
			return fmt.Errorf("user %d role changed concurrently: %w", id, domain.ErrConflict)
		}
		if demoting && admins <= 1 {
			return domain.ErrLastAdmin
		}

		row := tx.QueryRow(ctx, `UPDATE users SET role = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns, id, string(to))
		if updated, err = scanUser(row); err != nil {
			return domain.StorageError("set role", err)
		}
		return insertAudit(ctx, tx, audit)
	})
	return updated, err
}

// Delete inserts the audit entry before removing the row so an admin deleting
// their own account still leaves a (nulled) trace.
func (r *UserRepository) Delete(ctx context.Context, id int64, audit *domain.ActionLog) error {
	return withTx(ctx, r.pool, "delete user", func(tx pgx.Tx) error {
		admins, err := lockAdmins(ctx, tx)
		if err != nil {
			return err
		}
		role, err := lockUserRole(ctx, tx, id)
		if err != nil {
			return err
		}

		var hasLoans bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM loans WHERE user_id = $1)`, id).Scan(&hasLoans); err != nil {
			return domain.StorageError("check loans", err)
		}
		if hasLoans {
			return fmt.Errorf("user %d has loans: %w", id, domain.ErrConflict)
		}
		if role.IsAdmin() && admins <= 1 {
			return domain.ErrLastAdmin
		}

		if err := insertAudit(ctx, tx, audit); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			if pgCode(err) == codeForeignKeyViolation {
				return fmt.Errorf("user %d has loans: %w", id, domain.ErrConflict)
			}
			return domain.StorageError("delete user", err)
		}
		return nil
	})
}
