package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

type LoanRepository struct {
	s *Store
}

var _ ports.LoanRepository = (*LoanRepository)(nil)

func (r *LoanRepository) Checkout(_ context.Context, loan *domain.Loan, audit *domain.ActionLog) (*domain.Loan, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[loan.BookID]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", loan.BookID, domain.ErrNotFound)
	}
	if _, ok := s.users[loan.UserID]; !ok {
		return nil, fmt.Errorf("user %d: %w", loan.UserID, domain.ErrNotFound)
	}
	if !book.IsAvailable() {
		return nil, fmt.Errorf("book %d: %w", loan.BookID, domain.ErrUnavailable)
	}
	for _, l := range s.loans {
		if l.UserID == loan.UserID && l.BookID == loan.BookID && l.Status == domain.LoanActive {
			return nil, domain.ErrDuplicateLoan
		}
	}

	nextBook := cloneBook(book)
	if err := nextBook.AdjustAvailability(-1); err != nil {
		return nil, err
	}
	nextBook.UpdatedAt = s.now()

	s.lastLoanID++
	stored := cloneLoan(loan)
	stored.ID = s.lastLoanID
	stored.Status = domain.LoanActive
	stored.ReturnDate = nil

	s.books[book.ID] = nextBook
	s.loans[stored.ID] = stored
	s.appendLog(audit)
	return cloneLoan(stored), nil
}

func (r *LoanRepository) Return(_ context.Context, loanID int64, returnedAt time.Time, audit *domain.ActionLog) (*domain.Loan, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.loans[loanID]
	if !ok {
		return nil, fmt.Errorf("loan %d: %w", loanID, domain.ErrNotFound)
	}
	next := cloneLoan(stored)
	if err := next.MarkReturned(returnedAt); err != nil {
		return nil, fmt.Errorf("loan %d is %s: %w", loanID, stored.Status, err)
	}

	book, ok := s.books[stored.BookID]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", stored.BookID, domain.ErrNotFound)
	}
	nextBook := cloneBook(book)
	if err := nextBook.AdjustAvailability(1); err != nil {
		return nil, err
	}
	nextBook.UpdatedAt = s.now()

	s.loans[loanID] = next
	s.books[book.ID] = nextBook
	s.appendLog(audit)
	return cloneLoan(next), nil
}

func (r *LoanRepository) FindByID(_ context.Context, id int64) (*domain.Loan, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[id]
	if !ok {
		return nil, fmt.Errorf("loan %d: %w", id, domain.ErrNotFound)
	}
	return cloneLoan(l), nil
}

func (r *LoanRepository) FindActive(_ context.Context, userID, bookID int64) (*domain.Loan, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.loans {
		if l.UserID == userID && l.BookID == bookID && l.Status == domain.LoanActive {
			return cloneLoan(l), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *LoanRepository) List(_ context.Context, f ports.ListLoansFilter) ([]*domain.Loan, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.matchLoans(f)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoanDate.Equal(out[j].LoanDate) {
			return out[i].LoanDate.After(out[j].LoanDate)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *LoanRepository) Count(_ context.Context, f ports.ListLoansFilter) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.matchLoans(f))), nil
}

// matchLoans must be called with s.mu held.
func (s *Store) matchLoans(f ports.ListLoansFilter) []*domain.Loan {
	asOf := f.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}
	out := []*domain.Loan{}
	for _, l := range s.loans {
		if f.UserID != 0 && l.UserID != f.UserID {
			continue
		}
		switch f.Status {
		case ports.LoanFilterActive:
			if l.Status != domain.LoanActive {
				continue
			}
		case ports.LoanFilterReturned:
			if l.Status != domain.LoanReturned {
				continue
			}
		case ports.LoanFilterOverdue:
			if !l.IsOverdue(asOf) {
				continue
			}
		}
		out = append(out, cloneLoan(l))
	}
	return out
}
