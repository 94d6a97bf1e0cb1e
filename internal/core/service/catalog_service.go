package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

type CatalogService struct {
	books  ports.BookRepository
	logger zerolog.Logger
}

var _ ports.CatalogService = (*CatalogService)(nil)

func NewCatalogService(books ports.BookRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{books: books, logger: logger}
}

func (s *CatalogService) AddBook(ctx context.Context, actor domain.Actor, input ports.BookInput) (*domain.Book, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	book, err := bookFromInput(input)
	if err != nil {
		return nil, err
	}

	created, err := s.books.Create(ctx, book, domain.NewActionLog(&actor, fmt.Sprintf("Added book '%s'", book.Title)))
	if err != nil {
		s.logger.Error().Err(err).Str("title", book.Title).Msg("failed to add book")
		return nil, err
	}
	s.logger.Info().Int64("book_id", created.ID).Str("by", actor.Username).Msg("book added")
	return created, nil
}

// UpdateBook replaces the descriptive fields and resizes the copy counts.
func (s *CatalogService) UpdateBook(ctx context.Context, actor domain.Actor, id int64, input ports.BookInput) (*domain.Book, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	book, err := bookFromInput(input)
	if err != nil {
		return nil, err
	}
	book.ID = id

	updated, err := s.books.Update(ctx, book, domain.NewActionLog(&actor, fmt.Sprintf("Edited book '%s'", book.Title)))
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("book_id", id).Int("total_copies", updated.TotalCopies).Int("available_copies", updated.AvailableCopies).Msg("book updated")
	return updated, nil
}

func (s *CatalogService) DeleteBook(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.books.Delete(ctx, id, domain.NewActionLog(&actor, fmt.Sprintf("Deleted book '%s'", book.Title))); err != nil {
		return err
	}
	s.logger.Info().Int64("book_id", id).Str("by", actor.Username).Msg("book deleted")
	return nil
}

// AdjustAvailability is a manual inventory correction of one copy.
func (s *CatalogService) AdjustAvailability(ctx context.Context, actor domain.Actor, id int64, delta int) (*domain.Book, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if delta != 1 && delta != -1 {
		return nil, fmt.Errorf("%w: delta must be +1 or -1", domain.ErrValidation)
	}
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := domain.NewActionLog(&actor, fmt.Sprintf("Adjusted availability of '%s' by %+d", book.Title, delta))
	return s.books.AdjustAvailability(ctx, id, delta, entry)
}

func (s *CatalogService) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return s.books.FindByID(ctx, id)
}

func (s *CatalogService) SearchBooks(ctx context.Context, filter ports.BookFilter) ([]*domain.Book, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)
	return s.books.Search(ctx, filter)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.books.Categories(ctx)
}

func bookFromInput(in ports.BookInput) (*domain.Book, error) {
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	if title == "" || author == "" {
		return nil, fmt.Errorf("%w: title and author are required", domain.ErrValidation)
	}
	if in.TotalCopies < 0 {
		return nil, fmt.Errorf("%w: total copies must be >= 0", domain.ErrValidation)
	}

	b := &domain.Book{
		Title:           title,
		Author:          author,
		Publisher:       strings.TrimSpace(in.Publisher),
		PublicationYear: in.PublicationYear,
		Category:        strings.TrimSpace(in.Category),
		Description:     strings.TrimSpace(in.Description),
		TotalCopies:     in.TotalCopies,
	}
	if isbn := strings.TrimSpace(in.ISBN); isbn != "" {
		b.ISBN = &isbn
	}
	return b, nil
}
