package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// LoanStatusFilter selects loans by lifecycle state.
type LoanStatusFilter string

const (
	LoanFilterAll      LoanStatusFilter = "all"
	LoanFilterActive   LoanStatusFilter = "active"
	LoanFilterReturned LoanStatusFilter = "returned"
	LoanFilterOverdue  LoanStatusFilter = "overdue"
)

// ParseLoanStatusFilter maps an empty value to LoanFilterAll.
func ParseLoanStatusFilter(s string) (LoanStatusFilter, error) {
	switch f := LoanStatusFilter(s); f {
	case "":
		return LoanFilterAll, nil
	case LoanFilterAll, LoanFilterActive, LoanFilterReturned, LoanFilterOverdue:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown loan status %q", domain.ErrValidation, s)
}

// ListLoansFilter carries all query parameters for listing loans.
type ListLoansFilter struct {
	Status LoanStatusFilter
	UserID int64     // 0 = any user
	AsOf   time.Time // reference time for LoanFilterOverdue
	Limit  int       // 0 = unlimited
}

// LoanRepository is the Loan Ledger store. Checkout and Return each run as a
// single transaction covering the loan row and the book's copy count.
type LoanRepository interface {
	// Checkout decrements the book's available copies (only while > 0) and
	// inserts the loan. Fails with domain.ErrUnavailable when no copy is left,
	// domain.ErrDuplicateLoan when the user already holds an active loan of the
	// book, domain.ErrNotFound when the book is gone.
	Checkout(ctx context.Context, loan *domain.Loan, audit *domain.ActionLog) (*domain.Loan, error)
	// Return marks an active loan returned and increments the book's available
	// copies. Fails with domain.ErrInvalidState when the loan is no longer
	// active and domain.ErrInventory when the count would exceed the total.
	Return(ctx context.Context, loanID int64, returnedAt time.Time, audit *domain.ActionLog) (*domain.Loan, error)

	FindByID(ctx context.Context, id int64) (*domain.Loan, error)
	// FindActive returns the active loan of (userID, bookID) or domain.ErrNotFound.
	FindActive(ctx context.Context, userID, bookID int64) (*domain.Loan, error)
	List(ctx context.Context, filter ListLoansFilter) ([]*domain.Loan, error)
	Count(ctx context.Context, filter ListLoansFilter) (int64, error)
}
