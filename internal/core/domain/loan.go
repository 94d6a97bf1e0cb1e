package domain

import (
	"math"
	"time"
)

// LoanPeriod is the fixed lending period.
const LoanPeriod = 14 * 24 * time.Hour

// LoanStatus represents the lifecycle state of a loan.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// validLoanTransitions defines the allowed state machine transitions.
// LoanReturned is terminal.
var validLoanTransitions = map[LoanStatus][]LoanStatus{
	LoanActive: {LoanReturned},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	for _, allowed := range validLoanTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Loan records one user borrowing one copy of one book.
type Loan struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	BookID     int64      `json:"book_id"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     LoanStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewLoan builds an active loan starting at now.
func NewLoan(userID, bookID int64, now time.Time) *Loan {
	return &Loan{
		UserID:    userID,
		BookID:    bookID,
		LoanDate:  now,
		DueDate:   now.Add(LoanPeriod),
		Status:    LoanActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkReturned moves the loan to its terminal state.
func (l *Loan) MarkReturned(at time.Time) error {
	if !l.Status.CanTransitionTo(LoanReturned) {
		return ErrInvalidState
	}
	l.Status = LoanReturned
	l.ReturnDate = &at
	l.UpdatedAt = at
	return nil
}

func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanActive && l.DueDate.Before(now)
}

// DaysRemaining is the number of days until the due date, rounded up.
// Negative once overdue, zero for returned loans.
func (l *Loan) DaysRemaining(now time.Time) int {
	if l.Status != LoanActive {
		return 0
	}
	days := l.DueDate.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}
