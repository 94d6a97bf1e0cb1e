package ports

import (
	"errors"
	"testing"

	"github.com/biblioteca/library-system/internal/core/domain"
)

func TestParseLoanStatusFilter(t *testing.T) {
	cases := map[string]LoanStatusFilter{
		"":         LoanFilterAll,
		"all":      LoanFilterAll,
		"active":   LoanFilterActive,
		"returned": LoanFilterReturned,
		"overdue":  LoanFilterOverdue,
	}
	for in, want := range cases {
		got, err := ParseLoanStatusFilter(in)
		if err != nil {
			t.Fatalf("ParseLoanStatusFilter(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLoanStatusFilter(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseLoanStatusFilter("lost"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
