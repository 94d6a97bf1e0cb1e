package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// BookInput carries the editable fields of a book.
type BookInput struct {
	Title           string
	Author          string
	ISBN            string // empty = none
	Publisher       string
	PublicationYear *int
	Category        string
	Description     string
	TotalCopies     int
}

// CatalogService defines catalog use cases. Mutations are admin-only.
type CatalogService interface {
	AddBook(ctx context.Context, actor domain.Actor, input BookInput) (*domain.Book, error)
	UpdateBook(ctx context.Context, actor domain.Actor, id int64, input BookInput) (*domain.Book, error)
	DeleteBook(ctx context.Context, actor domain.Actor, id int64) error
	AdjustAvailability(ctx context.Context, actor domain.Actor, id int64, delta int) (*domain.Book, error)

	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	SearchBooks(ctx context.Context, filter BookFilter) ([]*domain.Book, error)
	Categories(ctx context.Context) ([]string, error)
}
