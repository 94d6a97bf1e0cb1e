// Package memory is an in-process implementation of the repository ports.
// A single mutex is held for the whole of every composite operation, which
// gives it the same all-or-nothing behaviour as the Postgres transactions.
package memory

import (
	"sync"
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
)

type Store struct {
	mu sync.Mutex

	books     map[int64]*domain.Book
	withdrawn map[int64]*domain.Book // deleted books still referenced by loan history
	users map[int64]*domain.User
	loans map[int64]*domain.Loan
	logs  []*domain.ActionLog

	lastBookID int64
	lastUserID int64
	lastLoanID int64
	lastLogID  int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		books:     make(map[int64]*domain.Book),
		withdrawn: make(map[int64]*domain.Book),
		users:     make(map[int64]*domain.User),
		loans:     make(map[int64]*domain.Loan),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Books() *BookRepository           { return &BookRepository{s: s} }
func (s *Store) Users() *UserRepository           { return &UserRepository{s: s} }
func (s *Store) Loans() *LoanRepository           { return &LoanRepository{s: s} }
func (s *Store) ActionLogs() *ActionLogRepository { return &ActionLogRepository{s: s} }

// appendLog must be called with s.mu held.
func (s *Store) appendLog(entry *domain.ActionLog) *domain.ActionLog {
	if entry == nil {
		return nil
	}
	s.lastLogID++
	stored := *entry
	stored.ID = s.lastLogID
	if stored.Timestamp.IsZero() {
		stored.Timestamp = s.now()
	}
	if stored.UserID != nil {
		id := *stored.UserID
		stored.UserID = &id
	}
	s.logs = append(s.logs, &stored)
	return cloneLog(&stored)
}

func cloneBook(b *domain.Book) *domain.Book {
	c := *b
	if b.ISBN != nil {
		isbn := *b.ISBN
		c.ISBN = &isbn
	}
	if b.PublicationYear != nil {
		year := *b.PublicationYear
		c.PublicationYear = &year
	}
	if b.DeletedAt != nil {
		at := *b.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func cloneLoan(l *domain.Loan) *domain.Loan {
	c := *l
	if l.ReturnDate != nil {
		rd := *l.ReturnDate
		c.ReturnDate = &rd
	}
	return &c
}

func cloneLog(e *domain.ActionLog) *domain.ActionLog {
	c := *e
	if e.UserID != nil {
		id := *e.UserID
		c.UserID = &id
	}
	return &c
}
