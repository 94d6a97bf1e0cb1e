package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// BookFilter carries catalog search parameters.
type BookFilter struct {
	Query    string // optional: case-insensitive substring of title, author or ISBN
	Category string // optional: exact category
}

// BookRepository is the Catalog Store.
//
// Every mutating method accepts an optional audit entry; when non-nil it is
// committed in the same transaction as the mutation.
type BookRepository interface {
	Create(ctx context.Context, b *domain.Book, audit *domain.ActionLog) (*domain.Book, error)
	// Update replaces the descriptive fields and resizes the copy counts from
	// the stored row: available = max(0, available + (total - storedTotal)).
	Update(ctx context.Context, b *domain.Book, audit *domain.ActionLog) (*domain.Book, error)
	// Delete withdraws the book from the catalog; loans referencing it are
	// kept. Fails with domain.ErrConflict while an active loan references it.
	Delete(ctx context.Context, id int64, audit *domain.ActionLog) error
	// AdjustAvailability applies delta to available_copies, failing with
	// domain.ErrInventory when the result would leave [0, total_copies].
	AdjustAvailability(ctx context.Context, id int64, delta int, audit *domain.ActionLog) (*domain.Book, error)

	// FindByID and the other reads only see books still in the catalog.
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	// FindByIDIncludingDeleted also resolves deleted books, for loan history.
	FindByIDIncludingDeleted(ctx context.Context, id int64) (*domain.Book, error)
	Search(ctx context.Context, filter BookFilter) ([]*domain.Book, error)
	Categories(ctx context.Context) ([]string, error)
	Recent(ctx context.Context, limit int) ([]*domain.Book, error)
	Count(ctx context.Context) (int64, error)
}
