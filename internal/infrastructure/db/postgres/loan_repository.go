package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

const loanColumns = `id, user_id, book_id, loan_date, due_date, return_date, status, created_at, updated_at`

var loanSelect = []any{"id", "user_id", "book_id", "loan_date", "due_date", "return_date", "status", "created_at", "updated_at"}

type LoanRepository struct {
	pool *pgxpool.Pool
}

var _ ports.LoanRepository = (*LoanRepository)(nil)

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		l      domain.Loan
		status string
	)
	err := row.Scan(&l.ID, &l.UserID, &l.BookID, &l.LoanDate, &l.DueDate, &l.ReturnDate, &status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Status = domain.LoanStatus(status)
	return &l, nil
}

// Checkout takes the copy with a conditional decrement, so of two concurrent
// checkouts of the last copy exactly one matches a row.
func (r *LoanRepository) Checkout(ctx context.Context, loan *domain.Loan, audit *domain.ActionLog) (*domain.Loan, error) {
	var created *domain.Loan
	err := withTx(ctx, r.pool, "checkout", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE books SET available_copies = available_copies - 1, updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL AND available_copies > 0`, loan.BookID)
		if err != nil {
			return domain.StorageError("take copy", err)
		}
		if tag.RowsAffected() == 0 {
			return bookMissOrBounds(ctx, tx, loan.BookID, domain.ErrUnavailable)
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO loans (user_id, book_id, loan_date, due_date, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'active', $3, $3)
			RETURNING `+loanColumns,
			loan.UserID, loan.BookID, loan.LoanDate, loan.DueDate)
		if created, err = scanLoan(row); err != nil {
			switch pgCode(err) {
			case codeUniqueViolation:
				return domain.ErrDuplicateLoan
			case codeForeignKeyViolation:
				return fmt.Errorf("user %d: %w", loan.UserID, domain.ErrNotFound)
			}
			return domain.StorageError("insert loan", err)
		}
		return insertAudit(ctx, tx, audit)
	})
	return created, err
}

// Return closes the loan only while it is still active and puts the copy
// back only while the count stays within the total.
func (r *LoanRepository) Return(ctx context.Context, loanID int64, returnedAt time.Time, audit *domain.ActionLog) (*domain.Loan, error) {
	var returned *domain.Loan
	err := withTx(ctx, r.pool, "return", func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE loans SET status = 'returned', return_date = $2, updated_at = $2
			WHERE id = $1 AND status = 'active'
			RETURNING `+loanColumns, loanID, returnedAt)
		var err error
		if returned, err = scanLoan(row); err != nil {
			if !isNoRows(err) {
				return domain.StorageError("close loan", err)
			}
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1)`, loanID).Scan(&exists); err != nil {
				return domain.StorageError("find loan", err)
			}
			if !exists {
				return fmt.Errorf("loan %d: %w", loanID, domain.ErrNotFound)
			}
			return fmt.Errorf("loan %d is not active: %w", loanID, domain.ErrInvalidState)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE books SET available_copies = available_copies + 1, updated_at = now()
			WHERE id = $1 AND available_copies < total_copies`, returned.BookID)
		if err != nil {
			return domain.StorageError("restore copy", err)
		}
		if tag.RowsAffected() == 0 {
			return bookMissOrBounds(ctx, tx, returned.BookID, domain.ErrInventory)
		}
		return insertAudit(ctx, tx, audit)
	})
	return returned, err
}

func (r *LoanRepository) FindByID(ctx context.Context, id int64) (*domain.Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	l, err := scanLoan(r.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("loan %d: %w", id, domain.ErrNotFound)
		}
		return nil, domain.StorageError("find loan", err)
	}
	return l, nil
}

func (r *LoanRepository) FindActive(ctx context.Context, userID, bookID int64) (*domain.Loan, error) {
	l, err := scanLoan(r.pool.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = $1 AND book_id = $2 AND status = 'active'`, userID, bookID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StorageError("find active loan", err)
	}
	return l, nil
}

// loanWhere translates a listing filter into goqu expressions.
func loanWhere(f ports.ListLoansFilter) []goqu.Expression {
	var where []goqu.Expression
	if f.UserID != 0 {
		where = append(where, goqu.I("user_id").Eq(f.UserID))
	}
	switch f.Status {
	case ports.LoanFilterActive:
		where = append(where, goqu.I("status").Eq(string(domain.LoanActive)))
	case ports.LoanFilterReturned:
		where = append(where, goqu.I("status").Eq(string(domain.LoanReturned)))
	case ports.LoanFilterOverdue:
		asOf := f.AsOf
		if asOf.IsZero() {
			asOf = time.Now().UTC()
		}
		where = append(where,
			goqu.I("status").Eq(string(domain.LoanActive)),
			goqu.I("due_date").Lt(asOf),
		)
	}
	return where
}

func listLoansQuery(f ports.ListLoansFilter) (string, []any, error) {
	ds := goqu.Dialect(dialect).From("loans").Select(loanSelect...).
		Where(loanWhere(f)...).
		Order(goqu.I("loan_date").Desc(), goqu.I("id").Desc())
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}
	return ds.Prepared(true).ToSQL()
}

func countLoansQuery(f ports.ListLoansFilter) (string, []any, error) {
	return goqu.Dialect(dialect).From("loans").Select(goqu.COUNT("*")).
		Where(loanWhere(f)...).
		Prepared(true).ToSQL()
}

func (r *LoanRepository) List(ctx context.Context, f ports.ListLoansFilter) ([]*domain.Loan, error) {
	query, args, err := listLoansQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build loan query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageError("list loans", err)
	}
	defer rows.Close()

	out := []*domain.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, domain.StorageError("list loans", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list loans", err)
	}
	return out, nil
}

func (r *LoanRepository) Count(ctx context.Context, f ports.ListLoansFilter) (int64, error) {
	query, args, err := countLoansQuery(f)
	if err != nil {
		return 0, fmt.Errorf("build loan count: %w", err)
	}
	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, domain.StorageError("count loans", err)
	}
	return n, nil
}
