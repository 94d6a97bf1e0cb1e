package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

type BookRepository struct {
	s *Store
}

var _ ports.BookRepository = (*BookRepository)(nil)

func (r *BookRepository) Create(_ context.Context, b *domain.Book, audit *domain.ActionLog) (*domain.Book, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.TotalCopies < 0 {
		return nil, fmt.Errorf("%w: total copies must be >= 0", domain.ErrValidation)
	}
	if err := s.checkISBN(b.ISBN, 0); err != nil {
		return nil, err
	}

	now := s.now()
	s.lastBookID++
	stored := cloneBook(b)
	stored.ID = s.lastBookID
	stored.AvailableCopies = stored.TotalCopies
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.books[stored.ID] = stored
	s.appendLog(audit)
	return cloneBook(stored), nil
}

func (r *BookRepository) Update(_ context.Context, b *domain.Book, audit *domain.ActionLog) (*domain.Book, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.books[b.ID]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", b.ID, domain.ErrNotFound)
	}
	if err := s.checkISBN(b.ISBN, b.ID); err != nil {
		return nil, err
	}

	next := cloneBook(stored)
	if err := next.Resize(b.TotalCopies); err != nil {
		return nil, err
	}
	next.Title = b.Title
	next.Author = b.Author
	next.ISBN = cloneBook(b).ISBN
	next.Publisher = b.Publisher
	next.PublicationYear = cloneBook(b).PublicationYear
	next.Category = b.Category
	next.Description = b.Description
	next.UpdatedAt = s.now()

	s.books[b.ID] = next
	s.appendLog(audit)
	return cloneBook(next), nil
}

func (r *BookRepository) Delete(_ context.Context, id int64, audit *domain.ActionLog) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
	}
	for _, l := range s.loans {
		if l.BookID == id && l.Status == domain.LoanActive {
			return fmt.Errorf("book %d has active loans: %w", id, domain.ErrConflict)
		}
	}
	gone := cloneBook(s.books[id])
	now := s.now()
	gone.DeletedAt = &now
	gone.UpdatedAt = now
	s.withdrawn[id] = gone
	delete(s.books, id)
	s.appendLog(audit)
	return nil
}

func (r *BookRepository) AdjustAvailability(_ context.Context, id int64, delta int, audit *domain.ActionLog) (*domain.Book, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.books[id]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
	}
	next := cloneBook(stored)
	if err := next.AdjustAvailability(delta); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()
	s.books[id] = next
	s.appendLog(audit)
	return cloneBook(next), nil
}

func (r *BookRepository) FindByID(_ context.Context, id int64) (*domain.Book, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
	}
	return cloneBook(b), nil
}

func (r *BookRepository) FindByIDIncludingDeleted(_ context.Context, id int64) (*domain.Book, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.books[id]; ok {
		return cloneBook(b), nil
	}
	if b, ok := s.withdrawn[id]; ok {
		return cloneBook(b), nil
	}
	return nil, fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
}

func (r *BookRepository) Search(_ context.Context, f ports.BookFilter) ([]*domain.Book, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []*domain.Book{}
	for _, b := range s.books {
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		if q != "" && !matchesQuery(b, q) {
			continue
		}
		out = append(out, cloneBook(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchesQuery(b *domain.Book, q string) bool {
	if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
		return true
	}
	return b.ISBN != nil && strings.Contains(strings.ToLower(*b.ISBN), q)
}

func (r *BookRepository) Categories(_ context.Context) ([]string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	out := []string{}
	for _, b := range s.books {
		if b.Category == "" {
			continue
		}
		if _, ok := seen[b.Category]; ok {
			continue
		}
		seen[b.Category] = struct{}{}
		out = append(out, b.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (r *BookRepository) Recent(_ context.Context, limit int) ([]*domain.Book, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, cloneBook(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *BookRepository) Count(_ context.Context) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.books)), nil
}

// checkISBN must be called with s.mu held.
func (s *Store) checkISBN(isbn *string, selfID int64) error {
	if isbn == nil {
		return nil
	}
	for id, b := range s.books {
		if id != selfID && b.ISBN != nil && *b.ISBN == *isbn {
			return fmt.Errorf("isbn %s: %w", *isbn, domain.ErrConflict)
		}
	}
	return nil
}
