package service

import (
	"context"
	"errors"
	"testing"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

func TestCatalogService_AddBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	year := 1967

	b, err := f.catalog.AddBook(ctx, f.admin, ports.BookInput{
		Title:           "  Cien años de soledad ",
		Author:          "Gabriel García Márquez",
		ISBN:            "978-0307474728",
		PublicationYear: &year,
		Category:        "Novela",
		TotalCopies:     4,
	})
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	if b.Title != "Cien años de soledad" || b.AvailableCopies != 4 {
		t.Fatalf("unexpected book: %+v", b)
	}
	if b.ISBN == nil || *b.ISBN != "978-0307474728" {
		t.Fatalf("unexpected isbn: %v", b.ISBN)
	}

	logs := f.logs(t)
	if len(logs) != 1 || logs[0].Action != "Added book 'Cien años de soledad'" {
		t.Fatalf("unexpected audit log: %+v", logs)
	}
}

func TestCatalogService_AddBook_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   domain.Actor
		input   ports.BookInput
		wantErr error
	}{
		{"student", f.student, ports.BookInput{Title: "T", Author: "A", TotalCopies: 1}, domain.ErrForbidden},
		{"missing title", f.admin, ports.BookInput{Author: "A", TotalCopies: 1}, domain.ErrValidation},
		{"negative copies", f.admin, ports.BookInput{Title: "T", Author: "A", TotalCopies: -1}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.catalog.AddBook(ctx, tt.actor, tt.input); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
	if n := len(f.logs(t)); n != 0 {
		t.Fatalf("rejected mutations must not be audited, got %d entries", n)
	}
}

func TestCatalogService_UpdateBook_Resize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "Rayuela", 3)
	if _, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID}); err != nil {
		t.Fatalf("loan: %v", err)
	}

	tests := []struct {
		total         int
		wantAvailable int
	}{
		{5, 4},
		{2, 1},
		{0, 0},
		{1, 1},
	}
	for _, tt := range tests {
		updated, err := f.catalog.UpdateBook(ctx, f.admin, b.ID, ports.BookInput{Title: "Rayuela", Author: "Cortázar", TotalCopies: tt.total})
		if err != nil {
			t.Fatalf("UpdateBook(%d): %v", tt.total, err)
		}
		if updated.TotalCopies != tt.total || updated.AvailableCopies != tt.wantAvailable {
			t.Fatalf("total %d: expected available %d, got %+v", tt.total, tt.wantAvailable, updated)
		}
	}
	if _, err := f.catalog.UpdateBook(ctx, f.admin, 9999, ports.BookInput{Title: "X", Author: "Y"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogService_DeleteBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "Ficciones", 1)
	res, err := f.loans.CreateLoan(ctx, f.student, ports.CreateLoanInput{BookID: b.ID})
	if err != nil {
		t.Fatalf("loan: %v", err)
	}

	if err := f.catalog.DeleteBook(ctx, f.admin, b.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict while on loan, got %v", err)
	}
	if _, err := f.loans.ReturnLoan(ctx, f.student, res.Loan.ID); err != nil {
		t.Fatalf("return: %v", err)
	}
	if err := f.catalog.DeleteBook(ctx, f.student, b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.catalog.DeleteBook(ctx, f.admin, b.ID); err != nil {
		t.Fatalf("DeleteBook after return: %v", err)
	}
	if _, err := f.catalog.GetBook(ctx, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// the returned loan stays on record with its title
	got, err := f.loans.GetLoan(ctx, f.student, res.Loan.ID)
	if err != nil {
		t.Fatalf("GetLoan after delete: %v", err)
	}
	if got.BookTitle != "Ficciones" || got.Status != string(domain.LoanReturned) {
		t.Fatalf("unexpected loan view %+v", got)
	}
	mine, err := f.loans.MyLoans(ctx, f.student)
	if err != nil {
		t.Fatalf("MyLoans: %v", err)
	}
	if len(mine.Returned) != 1 || mine.Returned[0].ID != res.Loan.ID {
		t.Fatalf("expected the returned loan in history, got %+v", mine.Returned)
	}
	all, err := f.loans.ListLoans(ctx, f.admin, ports.LoanFilterAll)
	if err != nil || len(all) != 1 {
		t.Fatalf("admin listing: %v, %+v", err, all)
	}
}

func TestCatalogService_AdjustAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "Niebla", 1)

	if _, err := f.catalog.AdjustAvailability(ctx, f.admin, b.ID, 2); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.catalog.AdjustAvailability(ctx, f.admin, b.ID, 1); !errors.Is(err, domain.ErrInventory) {
		t.Fatalf("expected ErrInventory, got %v", err)
	}
	got, err := f.catalog.AdjustAvailability(ctx, f.admin, b.ID, -1)
	if err != nil {
		t.Fatalf("AdjustAvailability: %v", err)
	}
	if got.AvailableCopies != 0 {
		t.Fatalf("expected 0 available, got %d", got.AvailableCopies)
	}
	if _, err := f.catalog.AdjustAvailability(ctx, f.student, b.ID, 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCatalogService_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, in := range []ports.BookInput{
		{Title: "El túnel", Author: "Sabato", Category: "Novela", TotalCopies: 1},
		{Title: "Breve historia del tiempo", Author: "Hawking", Category: "Ciencia", TotalCopies: 1},
	} {
		if _, err := f.catalog.AddBook(ctx, f.admin, in); err != nil {
			t.Fatalf("AddBook: %v", err)
		}
	}

	books, err := f.catalog.SearchBooks(ctx, ports.BookFilter{Query: " hawking "})
	if err != nil || len(books) != 1 || books[0].Author != "Hawking" {
		t.Fatalf("unexpected search result: %+v (%v)", books, err)
	}
	cats, err := f.catalog.Categories(ctx)
	if err != nil || len(cats) != 2 {
		t.Fatalf("unexpected categories: %v (%v)", cats, err)
	}
}
