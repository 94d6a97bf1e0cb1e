package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/biblioteca/library-system/internal/core/domain"
)

func TestReason(t *testing.T) {
	cases := map[string]error{
		"storage":       domain.StorageError("checkout", errors.New("timeout")),
		"not_found":     fmt.Errorf("book 7: %w", domain.ErrNotFound),
		"unavailable":   domain.ErrUnavailable,
		"duplicate":     domain.ErrDuplicateLoan,
		"invalid_state": domain.ErrInvalidState,
		"inventory":     domain.ErrInventory,
		"forbidden":     domain.ErrForbidden,
		"validation":    domain.ErrValidation,
		"conflict":      fmt.Errorf("key reused: %w", domain.ErrConflict),
		"other":         errors.New("boom"),
	}
	for want, err := range cases {
		if got := Reason(err); got != want {
			t.Errorf("Reason(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestLoansCreatedTotal_Increments(t *testing.T) {
	before := testutil.ToFloat64(LoansCreatedTotal.WithLabelValues("self"))
	LoansCreatedTotal.WithLabelValues("self").Inc()
	if got := testutil.ToFloat64(LoansCreatedTotal.WithLabelValues("self")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}
