package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

func TestDashboardService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dash := NewDashboardService(f.store.Books(), f.store.Users(), f.store.Loans(), f.store.ActionLogs(), f.loans)

	b1 := f.addBook(t, "Uno", 1)
	b2 := f.addBook(t, "Dos", 1)
	f.loans.now = fixedClock(time.Now().UTC().AddDate(0, 0, -30))
	if _, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b1.ID}); err != nil {
		t.Fatalf("old loan: %v", err)
	}
	f.loans.now = func() time.Time { return time.Now().UTC() }
	if _, err := f.loans.CreateLoan(ctx, f.other, ports.CreateLoanInput{BookID: b2.ID}); err != nil {
		t.Fatalf("loan: %v", err)
	}

	admin, err := dash.Admin(ctx, f.admin)
	if err != nil {
		t.Fatalf("Admin: %v", err)
	}
	if admin.TotalBooks != 2 || admin.TotalUsers != 3 || admin.ActiveLoans != 2 || admin.OverdueLoans != 1 {
		t.Fatalf("unexpected counters: %+v", admin)
	}
	if len(admin.RecentLogs) != 2 {
		t.Fatalf("expected 2 recent logs, got %d", len(admin.RecentLogs))
	}
	if _, err := dash.Admin(ctx, f.student); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	student, err := dash.Student(ctx, f.student)
	if err != nil {
		t.Fatalf("Student: %v", err)
	}
	if len(student.ActiveLoans) != 1 || !student.ActiveLoans[0].IsOverdue {
		t.Fatalf("unexpected student loans: %+v", student.ActiveLoans)
	}
	if len(student.RecentBooks) != 2 {
		t.Fatalf("expected 2 recent books, got %d", len(student.RecentBooks))
	}
}
