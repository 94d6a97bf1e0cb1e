package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

// recentReturnedLimit caps the returned-loan history shown to a borrower.
const recentReturnedLimit = 10

type LoanService struct {
	loans  ports.LoanRepository
	books  ports.BookRepository
	users  ports.UserRepository
	idem   IdempotencyStore // optional
	logger zerolog.Logger
	now    func() time.Time
}

var _ ports.LoanService = (*LoanService)(nil)

func NewLoanService(loans ports.LoanRepository, books ports.BookRepository, users ports.UserRepository, idem IdempotencyStore, logger zerolog.Logger) *LoanService {
	return &LoanService{
		loans:  loans,
		books:  books,
		users:  users,
		idem:   idem,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateLoan checks a book out to the acting student. If an idempotency key is
// provided and already seen, the previously created loan is returned without
// side effects.
func (s *LoanService) CreateLoan(ctx context.Context, actor domain.Actor, input ports.CreateLoanInput) (*ports.CreateLoanResult, error) {
	if domain.IsAdmin(actor) {
		return nil, fmt.Errorf("%w: administrators cannot borrow books", domain.ErrForbidden)
	}
	res, err := s.replay(ctx, actor, input.IdempotencyKey, actor.ID, input.BookID)
	if err != nil || res != nil {
		return res, err
	}

	loan, err := s.checkout(ctx, actor.ID, input.BookID, nil)
	if err != nil {
		return s.checkoutFailed(ctx, actor, input.IdempotencyKey, actor.ID, input.BookID, err)
	}
	s.remember(ctx, actor, input.IdempotencyKey, loan.ID)

	s.logger.Info().Int64("loan_id", loan.ID).Int64("user_id", actor.ID).Int64("book_id", loan.BookID).Msg("loan created")
	view, err := s.view(ctx, loan)
	if err != nil {
		return nil, err
	}
	return &ports.CreateLoanResult{Loan: *view}, nil
}

// CreateLoanForStudent lets an administrator lend a book to a student. The
// audit entry commits together with the loan.
func (s *LoanService) CreateLoanForStudent(ctx context.Context, actor domain.Actor, input ports.AdminLoanInput) (*ports.CreateLoanResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	student, err := s.users.FindByID(ctx, input.StudentID)
	if err != nil {
		return nil, err
	}
	if student.Role.IsAdmin() {
		return nil, fmt.Errorf("%w: loans can only be created for students", domain.ErrForbidden)
	}
	res, err := s.replay(ctx, actor, input.IdempotencyKey, student.ID, input.BookID)
	if err != nil || res != nil {
		return res, err
	}

	loan, err := s.checkout(ctx, student.ID, input.BookID, func(b *domain.Book) *domain.ActionLog {
		return domain.NewActionLog(&actor, fmt.Sprintf("Added a loan of '%s' for user '%s'", b.Title, student.FullName()))
	})
	if err != nil {
		return s.checkoutFailed(ctx, actor, input.IdempotencyKey, student.ID, input.BookID, err)
	}
	s.remember(ctx, actor, input.IdempotencyKey, loan.ID)

	s.logger.Info().Int64("loan_id", loan.ID).Int64("user_id", student.ID).Int64("book_id", loan.BookID).Str("by", actor.Username).Msg("loan created by admin")
	view, err := s.view(ctx, loan)
	if err != nil {
		return nil, err
	}
	return &ports.CreateLoanResult{Loan: *view}, nil
}

func (s *LoanService) checkout(ctx context.Context, userID, bookID int64, audit func(*domain.Book) *domain.ActionLog) (*domain.Loan, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, fmt.Errorf("book %d: %w", bookID, domain.ErrUnavailable)
	}
	if _, err := s.loans.FindActive(ctx, userID, bookID); err == nil {
		return nil, domain.ErrDuplicateLoan
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	var entry *domain.ActionLog
	if audit != nil {
		entry = audit(book)
	}
	return s.loans.Checkout(ctx, domain.NewLoan(userID, bookID, s.now()), entry)
}

// checkoutFailed resolves the race where two requests carrying the same key
// both miss the lookup: the loser sees ErrDuplicateLoan and replays the winner.
func (s *LoanService) checkoutFailed(ctx context.Context, actor domain.Actor, key string, userID, bookID int64, err error) (*ports.CreateLoanResult, error) {
	if key != "" && errors.Is(err, domain.ErrDuplicateLoan) {
		res, rerr := s.replay(ctx, actor, key, userID, bookID)
		if rerr != nil || res != nil {
			return res, rerr
		}
	}
	s.logger.Warn().Err(err).Int64("actor_id", actor.ID).Msg("checkout rejected")
	return nil, err
}

// replay returns the loan an earlier request with the same key created, or
// nil when there is none. A key reused for another borrower or book fails with
// ErrConflict. Lookup failures fall through to a fresh checkout.
func (s *LoanService) replay(ctx context.Context, actor domain.Actor, key string, userID, bookID int64) (*ports.CreateLoanResult, error) {
	if s.idem == nil || key == "" {
		return nil, nil
	}
	loanID, ok, err := s.idem.Lookup(ctx, actor.ID, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed")
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("loan_id", loanID).Msg("idempotency key points at a missing loan")
		return nil, nil
	}
	if loan.UserID != userID || loan.BookID != bookID {
		return nil, fmt.Errorf("%w: idempotency key %q already used for loan %d", domain.ErrConflict, key, loan.ID)
	}
	view, err := s.view(ctx, loan)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("idempotency_key", key).Int64("loan_id", loanID).Msg("idempotent replay")
	return &ports.CreateLoanResult{Loan: *view, AlreadyExisted: true}, nil
}

func (s *LoanService) remember(ctx context.Context, actor domain.Actor, key string, loanID int64) {
	if s.idem == nil || key == "" {
		return
	}
	if err := s.idem.Remember(ctx, actor.ID, key, loanID); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotency key")
	}
}

// ReturnLoan closes an active loan and puts the copy back on the shelf.
// Returns made by an administrator on someone else's loan are audited.
func (s *LoanService) ReturnLoan(ctx context.Context, actor domain.Actor, loanID int64) (*ports.LoanView, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !canAccessLoan(actor, loan) {
		return nil, fmt.Errorf("%w: loan %d belongs to another user", domain.ErrForbidden, loanID)
	}
	if loan.Status != domain.LoanActive {
		return nil, fmt.Errorf("loan %d is %s: %w", loanID, loan.Status, domain.ErrInvalidState)
	}

	var entry *domain.ActionLog
	if loan.UserID != actor.ID {
		book, err := s.books.FindByID(ctx, loan.BookID)
		if err != nil {
			return nil, err
		}
		entry = domain.NewActionLog(&actor, fmt.Sprintf("Registered the return of '%s' (loan #%d)", book.Title, loan.ID))
	}

	returned, err := s.loans.Return(ctx, loanID, s.now(), entry)
	if err != nil {
		s.logger.Warn().Err(err).Int64("loan_id", loanID).Msg("return rejected")
		return nil, err
	}
	s.logger.Info().Int64("loan_id", loanID).Str("by", actor.Username).Msg("loan returned")
	return s.view(ctx, returned)
}

func (s *LoanService) GetLoan(ctx context.Context, actor domain.Actor, loanID int64) (*ports.LoanView, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !canAccessLoan(actor, loan) {
		return nil, fmt.Errorf("%w: loan %d belongs to another user", domain.ErrForbidden, loanID)
	}
	return s.view(ctx, loan)
}

func (s *LoanService) MyLoans(ctx context.Context, actor domain.Actor) (*ports.MyLoansResult, error) {
	active, err := s.loans.List(ctx, ports.ListLoansFilter{Status: ports.LoanFilterActive, UserID: actor.ID})
	if err != nil {
		return nil, err
	}
	returned, err := s.loans.List(ctx, ports.ListLoansFilter{Status: ports.LoanFilterReturned, UserID: actor.ID, Limit: recentReturnedLimit})
	if err != nil {
		return nil, err
	}

	res := &ports.MyLoansResult{}
	if res.Active, err = s.views(ctx, active); err != nil {
		return nil, err
	}
	if res.Returned, err = s.views(ctx, returned); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *LoanService) ListLoans(ctx context.Context, actor domain.Actor, status ports.LoanStatusFilter) ([]ports.LoanView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	loans, err := s.loans.List(ctx, ports.ListLoansFilter{Status: status, AsOf: s.now()})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, loans)
}

func (s *LoanService) view(ctx context.Context, loan *domain.Loan) (*ports.LoanView, error) {
	views, err := s.views(ctx, []*domain.Loan{loan})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves book titles and borrower names with explicit lookups,
// memoised per call. Deleted books still resolve.
func (s *LoanService) views(ctx context.Context, loans []*domain.Loan) ([]ports.LoanView, error) {
	now := s.now()
	books := make(map[int64]*domain.Book)
	users := make(map[int64]*domain.User)
	out := make([]ports.LoanView, 0, len(loans))

	for _, l := range loans {
		book, ok := books[l.BookID]
		if !ok {
			b, err := s.books.FindByIDIncludingDeleted(ctx, l.BookID)
			if err != nil {
				return nil, err
			}
			book, books[l.BookID] = b, b
		}
		user, ok := users[l.UserID]
		if !ok {
			u, err := s.users.FindByID(ctx, l.UserID)
			if err != nil {
				return nil, err
			}
			user, users[l.UserID] = u, u
		}
		out = append(out, ports.LoanView{
			ID:            l.ID,
			UserID:        l.UserID,
			Borrower:      user.FullName(),
			BookID:        l.BookID,
			BookTitle:     book.Title,
			LoanDate:      l.LoanDate,
			DueDate:       l.DueDate,
			ReturnDate:    l.ReturnDate,
			Status:        string(l.Status),
			IsOverdue:     l.IsOverdue(now),
			DaysRemaining: l.DaysRemaining(now),
		})
	}
	return out, nil
}
