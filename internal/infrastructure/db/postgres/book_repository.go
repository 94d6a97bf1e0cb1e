package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

const bookColumns = `id, title, author, isbn, publisher, publication_year, category, description, total_copies, available_copies, created_at, updated_at, deleted_at`

var bookSelect = []any{"id", "title", "author", "isbn", "publisher", "publication_year", "category", "description", "total_copies", "available_copies", "created_at", "updated_at", "deleted_at"}

type BookRepository struct {
	pool *pgxpool.Pool
}

var _ ports.BookRepository = (*BookRepository)(nil)

func scanBook(row pgx.Row) (*domain.Book, error) {
	var b domain.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Publisher, &b.PublicationYear,
		&b.Category, &b.Description, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBooks(rows pgx.Rows, op string) ([]*domain.Book, error) {
	defer rows.Close()
	out := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, domain.StorageError(op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError(op, err)
	}
	return out, nil
}

// bookWriteError maps constraint violations raised by book writes.
func bookWriteError(op string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%s: isbn already registered: %w", op, domain.ErrConflict)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrValidation)
	}
	return domain.StorageError(op, err)
}

func (r *BookRepository) Create(ctx context.Context, b *domain.Book, audit *domain.ActionLog) (*domain.Book, error) {
	var created *domain.Book
	err := withTx(ctx, r.pool, "create book", func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO books (title, author, isbn, publisher, publication_year, category, description, total_copies, available_copies)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			RETURNING `+bookColumns,
			b.Title, b.Author, b.ISBN, b.Publisher, b.PublicationYear, b.Category, b.Description, b.TotalCopies)
		var err error
		if created, err = scanBook(row); err != nil {
			return bookWriteError("create book", err)
		}
		return insertAudit(ctx, tx, audit)
	})
	return created, err
}

// Update resizes against the stored row in a single statement: every
// right-hand side in SET sees the pre-update values.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book, audit *domain.ActionLog) (*domain.Book, error) {
	if b.TotalCopies < 0 {
		return nil, fmt.Errorf("%w: total copies must be >= 0", domain.ErrValidation)
	}
	var updated *domain.Book
	err := withTx(ctx, r.pool, "update book", func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE books SET
				title = $2, author = $3, isbn = $4, publisher = $5, publication_year = $6,
				category = $7, description = $8,
				available_copies = GREATEST(0, available_copies + ($9 - total_copies)),
				total_copies = $9,
				updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING `+bookColumns,
			b.ID, b.Title, b.Author, b.ISBN, b.Publisher, b.PublicationYear, b.Category, b.Description, b.TotalCopies)
		var err error
		if updated, err = scanBook(row); err != nil {
			if isNoRows(err) {
				return fmt.Errorf("book %d: %w", b.ID, domain.ErrNotFound)
			}
			return bookWriteError("update book", err)
		}
		return insertAudit(ctx, tx, audit)
	})
	return updated, err
}

// Delete locks the book row first so a concurrent checkout either commits
// before the active-loan check or fails to find the book. The row is kept,
// marked deleted, so loan history still resolves it.
func (r *BookRepository) Delete(ctx context.Context, id int64, audit *domain.ActionLog) error {
	return withTx(ctx, r.pool, "delete book", func(tx pgx.Tx) error {
		var locked int64
		if err := tx.QueryRow(ctx, `SELECT id FROM books WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id).Scan(&locked); err != nil {
			if isNoRows(err) {
				return fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
			}
			return domain.StorageError("lock book", err)
		}

		var active bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM loans WHERE book_id = $1 AND status = 'active')`, id).Scan(&active); err != nil {
			return domain.StorageError("check active loans", err)
		}
		if active {
			return fmt.Errorf("book %d has active loans: %w", id, domain.ErrConflict)
		}

		if err := insertAudit(ctx, tx, audit); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE books SET deleted_at = now(), updated_at = now() WHERE id = $1`, id); err != nil {
			return domain.StorageError("delete book", err)
		}
		return nil
	})
}

func (r *BookRepository) AdjustAvailability(ctx context.Context, id int64, delta int, audit *domain.ActionLog) (*domain.Book, error) {
	var adjusted *domain.Book
	err := withTx(ctx, r.pool, "adjust availability", func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE books SET available_copies = available_copies + $2, updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL AND available_copies + $2 BETWEEN 0 AND total_copies
			RETURNING `+bookColumns, id, delta)
		var err error
		if adjusted, err = scanBook(row); err != nil {
			if !isNoRows(err) {
				return domain.StorageError("adjust availability", err)
			}
			return bookMissOrBounds(ctx, tx, id, domain.ErrInventory)
		}
		return insertAudit(ctx, tx, audit)
	})
	return adjusted, err
}

// bookMissOrBounds explains a guarded UPDATE that matched no row: either the
// book is gone or the guard rejected it with guardErr.
func bookMissOrBounds(ctx context.Context, q querier, id int64, guardErr error) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1 AND deleted_at IS NULL)`, id).Scan(&exists); err != nil {
		return domain.StorageError("find book", err)
	}
	if !exists {
		return fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("book %d: %w", id, guardErr)
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *BookRepository) FindByIDIncludingDeleted(ctx context.Context, id int64) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
}

func (r *BookRepository) find(ctx context.Context, query string, id int64) (*domain.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
		}
		return nil, domain.StorageError("find book", err)
	}
	return b, nil
}

// searchQuery builds the catalog search: substring match on title, author or
// ISBN, optional exact category, ordered by title.
func searchQuery(f ports.BookFilter) (string, []any, error) {
	ds := goqu.Dialect(dialect).From("books").Select(bookSelect...).
		Where(goqu.I("deleted_at").IsNull()).
		Order(goqu.I("title").Asc(), goqu.I("id").Asc())

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("title").ILike(pattern),
			goqu.I("author").ILike(pattern),
			goqu.I("isbn").ILike(pattern),
		))
	}
	if f.Category != "" {
		ds = ds.Where(goqu.I("category").Eq(f.Category))
	}
	return ds.Prepared(true).ToSQL()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *BookRepository) Search(ctx context.Context, f ports.BookFilter) ([]*domain.Book, error) {
	query, args, err := searchQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageError("search books", err)
	}
	return collectBooks(rows, "search books")
}

func (r *BookRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM books WHERE category <> '' AND deleted_at IS NULL ORDER BY category`)
	if err != nil {
		return nil, domain.StorageError("list categories", err)
	}
	cats, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, domain.StorageError("list categories", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (r *BookRepository) Recent(ctx context.Context, limit int) ([]*domain.Book, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookColumns+` FROM books WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC LIMIT $1`, limitArg(limit))
	if err != nil {
		return nil, domain.StorageError("recent books", err)
	}
	return collectBooks(rows, "recent books")
}

func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM books WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, domain.StorageError("count books", err)
	}
	return n, nil
}
