package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

func TestLoanService_CreateLoan_Success(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "Cien años de soledad", 3)

	res, err := f.loans.CreateLoan(context.Background(), f.student, ports.CreateLoanInput{BookID: b.ID})
	if err != nil {
		t.Fatalf("CreateLoan returned error: %v", err)
	}
	if res.AlreadyExisted {
		t.Fatalf("expected a new loan")
	}
	if res.Loan.Status != string(domain.LoanActive) || res.Loan.BookTitle != b.Title {
		t.Fatalf("unexpected loan view: %+v", res.Loan)
	}
	if got := res.Loan.DueDate.Sub(res.Loan.LoanDate); got != domain.LoanPeriod {
		t.Fatalf("expected 14 day period, got %v", got)
	}
	if res.Loan.DaysRemaining != 14 || res.Loan.IsOverdue {
		t.Fatalf("unexpected derived fields: %+v", res.Loan)
	}
	if got := f.book(t, b.ID).AvailableCopies; got != 2 {
		t.Fatalf("expected 2 available, got %d", got)
	}
}

func TestLoanService_CreateLoan_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	empty := f.addBook(t, "Agotado", 0)
	b := f.addBook(t, "Rayuela", 2)
	if _, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID}); err != nil {
		t.Fatalf("first loan: %v", err)
	}

	tests := []struct {
		name    string
		actor   domain.Actor
		bookID  int64
		wantErr error
	}{
		{"admin cannot borrow", f.admin, b.ID, domain.ErrForbidden},
		{"unknown book", f.student, 9999, domain.ErrNotFound},
		{"no copies left", f.student, empty.ID, domain.ErrUnavailable},
		{"already on loan", f.student, b.ID, domain.ErrDuplicateLoan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.loans.CreateLoan(ctx, tt.actor, ports.CreateLoanInput{BookID: tt.bookID})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
	if got := f.book(t, b.ID).AvailableCopies; got != 1 {
		t.Fatalf("rejections must not change counts, got %d", got)
	}
	if got := f.book(t, empty.ID).AvailableCopies; got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
}

func TestLoanService_CreateAndReturn_RestoresCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "Ficciones", 1)
	logsBefore := len(f.logs(t))

	res, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID})
	if err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	view, err := f.loans.ReturnLoan(ctx, f.student, res.Loan.ID)
	if err != nil {
		t.Fatalf("ReturnLoan: %v", err)
	}
	if view.Status != string(domain.LoanReturned) || view.ReturnDate == nil {
		t.Fatalf("unexpected view after return: %+v", view)
	}
	if view.IsOverdue || view.DaysRemaining != 0 {
		t.Fatalf("returned loans have no derived due state: %+v", view)
	}
	if got := f.book(t, b.ID).AvailableCopies; got != 1 {
		t.Fatalf("expected count restored to 1, got %d", got)
	}
	if got := len(f.logs(t)); got != logsBefore {
		t.Fatalf("student self-service must not be audited, logs %d -> %d", logsBefore, got)
	}
}

func TestLoanService_ReturnLoan_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "Pedro Páramo", 2)

	res, _ := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID})
	if _, err := f.loans.ReturnLoan(ctx, f.student, res.Loan.ID); err != nil {
		t.Fatalf("first return: %v", err)
	}
	if _, err := f.loans.ReturnLoan(ctx, f.student, res.Loan.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if got := f.book(t, b.ID).AvailableCopies; got != 2 {
		t.Fatalf("double return must not inflate the count, got %d", got)
	}
}

func TestLoanService_ReturnLoan_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "La casa de los espíritus", 1)
	res, _ := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID})

	if _, err := f.loans.ReturnLoan(ctx, f.other, res.Loan.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.loans.ReturnLoan(ctx, f.student, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	logsBefore := len(f.logs(t))
	if _, err := f.loans.ReturnLoan(ctx, f.admin, res.Loan.ID); err != nil {
		t.Fatalf("admin return: %v", err)
	}
	logs := f.logs(t)
	if len(logs) != logsBefore+1 {
		t.Fatalf("expected admin return to be audited")
	}
	if logs[0].UserID == nil || *logs[0].UserID != f.admin.ID {
		t.Fatalf("audit entry should name the admin: %+v", logs[0])
	}
}

func TestLoanService_LastCopy_ConcurrentCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "El Aleph", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, actor := range []domain.Actor{f.student, f.other} {
		wg.Add(1)
		go func(i int, actor domain.Actor) {
			defer wg.Done()
			_, errs[i] = f.loans.CreateLoan(ctx, actor, ports.CreateLoanInput{BookID: b.ID})
		}(i, actor)
	}
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || unavailable != 1 {
		t.Fatalf("expected one winner and one ErrUnavailable, got ok=%d unavailable=%d", ok, unavailable)
	}
	if got := f.book(t, b.ID).AvailableCopies; got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
}

// Two copies, two borrowers, a third is turned away until a return.
func TestLoanService_TwoCopiesScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	third := f.addUser(t, "tercero", domain.RoleStudent)
	b := f.addBook(t, "Nada", 2)

	first, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := f.loans.CreateLoan(ctx, f.other, ports.CreateLoanInput{BookID: b.ID}); err != nil {
		t.Fatalf("second: %v", err)
	}
	if _, err := f.loans.CreateLoan(ctx, third, ports.CreateLoanInput{BookID: b.ID}); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := f.loans.ReturnLoan(ctx, f.student, first.Loan.ID); err != nil {
		t.Fatalf("return: %v", err)
	}
	if _, err := f.loans.CreateLoan(ctx, third, ports.CreateLoanInput{BookID: b.ID}); err != nil {
		t.Fatalf("third after return: %v", err)
	}
	if got := f.book(t, b.ID).AvailableCopies; got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
}

func TestLoanService_CreateLoan_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "Marianela", 3)
	in := ports.CreateLoanInput{BookID: b.ID, IdempotencyKey: "key-1"}

	first, err := f.loans.CreateLoan(ctx, f.student, in)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := f.loans.CreateLoan(ctx, f.student, in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !second.AlreadyExisted || second.Loan.ID != first.Loan.ID {
		t.Fatalf("expected replay of loan %d, got %+v", first.Loan.ID, second)
	}
	if got := f.book(t, b.ID).AvailableCopies; got != 2 {
		t.Fatalf("replay must not decrement again, got %d", got)
	}

	// same key, different user: independent
	if res, err := f.loans.CreateLoan(ctx, f.other, in); err != nil || res.AlreadyExisted {
		t.Fatalf("expected a fresh loan for another user, got %+v, %v", res, err)
	}
}

func TestLoanService_CreateLoan_DuplicateWithStoredKeyReplays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "Niebla", 3)

	first, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	// The key is stored but the lookup fails transiently, as when two retries race.
	_ = f.idem.Remember(ctx, f.student.ID, "k", first.Loan.ID)
	f.idem.lookupErr = errors.New("redis down")
	if _, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID, IdempotencyKey: "k"}); !errors.Is(err, domain.ErrDuplicateLoan) {
		t.Fatalf("expected ErrDuplicateLoan while lookups fail, got %v", err)
	}

	f.idem.lookupErr = nil
	res, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID, IdempotencyKey: "k"})
	if err != nil || !res.AlreadyExisted {
		t.Fatalf("expected replay, got %+v, %v", res, err)
	}
}

func TestLoanService_CreateLoanForStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "Doña Bárbara", 1)

	if _, err := f.loans.CreateLoanForStudent(ctx, f.student, ports.AdminLoanInput{StudentID: f.other.ID, BookID: b.ID}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if _, err := f.loans.CreateLoanForStudent(ctx, f.admin, ports.AdminLoanInput{StudentID: f.admin.ID, BookID: b.ID}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin target, got %v", err)
	}
	if _, err := f.loans.CreateLoanForStudent(ctx, f.admin, ports.AdminLoanInput{StudentID: 9999, BookID: b.ID}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	logsBefore := len(f.logs(t))
	res, err := f.loans.CreateLoanForStudent(ctx, f.admin, ports.AdminLoanInput{StudentID: f.student.ID, BookID: b.ID})
	if err != nil {
		t.Fatalf("CreateLoanForStudent: %v", err)
	}
	if res.Loan.UserID != f.student.ID {
		t.Fatalf("loan should belong to the student: %+v", res.Loan)
	}
	if got := len(f.logs(t)); got != logsBefore+1 {
		t.Fatalf("expected the admin loan to be audited")
	}

	if _, err := f.loans.CreateLoanForStudent(ctx, f.admin, ports.AdminLoanInput{StudentID: f.other.ID, BookID: b.ID}); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := len(f.logs(t)); got != logsBefore+1 {
		t.Fatalf("failed loans must not leave an audit entry")
	}
}

func TestLoanService_ListLoans_Overdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.addBook(t, "Antiguo", 1)
	b2 := f.addBook(t, "Nuevo", 1)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.loans.now = fixedClock(now.AddDate(0, 0, -20))
	if _, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b1.ID}); err != nil {
		t.Fatalf("old loan: %v", err)
	}
	f.loans.now = fixedClock(now)
	if _, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b2.ID}); err != nil {
		t.Fatalf("new loan: %v", err)
	}

	if _, err := f.loans.ListLoans(ctx, f.student, ports.LoanFilterAll); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	overdue, err := f.loans.ListLoans(ctx, f.admin, ports.LoanFilterOverdue)
	if err != nil {
		t.Fatalf("ListLoans: %v", err)
	}
	if len(overdue) != 1 || overdue[0].BookID != b1.ID {
		t.Fatalf("expected only the old loan, got %+v", overdue)
	}
	if !overdue[0].IsOverdue || overdue[0].DaysRemaining != -6 {
		t.Fatalf("unexpected derived fields: %+v", overdue[0])
	}

	all, err := f.loans.ListLoans(ctx, f.admin, ports.LoanFilterAll)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 loans, got %d (%v)", len(all), err)
	}
}

func TestLoanService_MyLoans_And_GetLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.addBook(t, "Uno", 1)
	b2 := f.addBook(t, "Dos", 1)

	l1, _ := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b1.ID})
	if _, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b2.ID}); err != nil {
		t.Fatalf("second loan: %v", err)
	}
	if _, err := f.loans.ReturnLoan(ctx, f.student, l1.Loan.ID); err != nil {
		t.Fatalf("return: %v", err)
	}

	mine, err := f.loans.MyLoans(ctx, f.student)
	if err != nil {
		t.Fatalf("MyLoans: %v", err)
	}
	if len(mine.Active) != 1 || len(mine.Returned) != 1 {
		t.Fatalf("unexpected loans: %+v", mine)
	}
	if mine.Active[0].Borrower != "Test estudiante" {
		t.Fatalf("unexpected borrower name %q", mine.Active[0].Borrower)
	}

	if _, err := f.loans.GetLoan(ctx, f.other, l1.Loan.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.loans.GetLoan(ctx, f.admin, l1.Loan.ID); err != nil {
		t.Fatalf("admin GetLoan: %v", err)
	}
}

func TestLoanService_CreateLoan_KeyReusedForAnotherBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.addBook(t, "Rayuela", 1)
	second := f.addBook(t, "Pedro Páramo", 1)

	if _, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: first.ID, IdempotencyKey: "k"}); err != nil {
		t.Fatalf("first: %v", err)
	}
	res, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: second.ID, IdempotencyKey: "k"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for a reused key, got %+v, %v", res, err)
	}
	if got := f.book(t, second.ID).AvailableCopies; got != 1 {
		t.Fatalf("second book must be untouched, available %d", got)
	}

	// a fresh key still works
	if _, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: second.ID, IdempotencyKey: "k2"}); err != nil {
		t.Fatalf("fresh key: %v", err)
	}
}

func TestLoanService_CreateLoanForStudent_KeyReusedForAnotherStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "La casa de los espíritus", 2)

	in := ports.AdminLoanInput{StudentID: f.student.ID, BookID: b.ID, IdempotencyKey: "lend-1"}
	first, err := f.loans.CreateLoanForStudent(ctx, f.admin, in)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	again, err := f.loans.CreateLoanForStudent(ctx, f.admin, in)
	if err != nil || !again.AlreadyExisted || again.Loan.ID != first.Loan.ID {
		t.Fatalf("expected replay, got %+v, %v", again, err)
	}

	in.StudentID = f.other.ID
	if _, err := f.loans.CreateLoanForStudent(ctx, f.admin, in); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for a reused key, got %v", err)
	}
	if got := f.book(t, b.ID).AvailableCopies; got != 1 {
		t.Fatalf("expected one copy out, available %d", got)
	}
}
