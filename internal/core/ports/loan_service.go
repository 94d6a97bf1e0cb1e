package ports

import (
	"context"
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// CreateLoanInput is a student checking out a book for themselves.
type CreateLoanInput struct {
	BookID         int64
	IdempotencyKey string
}

// AdminLoanInput is an admin lending a book to a student.
type AdminLoanInput struct {
	StudentID      int64
	BookID         int64
	IdempotencyKey string
}

// LoanView is a loan resolved against its book and borrower, with the derived
// fields evaluated at read time.
type LoanView struct {
	ID            int64
	UserID        int64
	Borrower      string
	BookID        int64
	BookTitle     string
	LoanDate      time.Time
	DueDate       time.Time
	ReturnDate    *time.Time
	Status        string
	IsOverdue     bool
	DaysRemaining int
}

// CreateLoanResult is returned by both checkout paths.
type CreateLoanResult struct {
	Loan LoanView
	// AlreadyExisted is true when the Idempotency-Key matched an earlier checkout.
	AlreadyExisted bool
}

// MyLoansResult is a borrower's own loan history.
type MyLoansResult struct {
	Active   []LoanView
	Returned []LoanView // most recent first, capped
}

// LoanService defines the Loan Ledger use cases.
type LoanService interface {
	CreateLoan(ctx context.Context, actor domain.Actor, input CreateLoanInput) (*CreateLoanResult, error)
	CreateLoanForStudent(ctx context.Context, actor domain.Actor, input AdminLoanInput) (*CreateLoanResult, error)
	ReturnLoan(ctx context.Context, actor domain.Actor, loanID int64) (*LoanView, error)
	GetLoan(ctx context.Context, actor domain.Actor, loanID int64) (*LoanView, error)
	MyLoans(ctx context.Context, actor domain.Actor) (*MyLoansResult, error)
	ListLoans(ctx context.Context, actor domain.Actor, status LoanStatusFilter) ([]LoanView, error)
}
