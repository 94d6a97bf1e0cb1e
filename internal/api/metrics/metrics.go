// Package metrics defines and registers all custom Prometheus metrics for the
// library API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init through promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/biblioteca/library-system/internal/core/domain"
)

const namespace = "library"

// ── Loan metrics ──────────────────────────────────────────────────────────────

// LoansCreatedTotal counts successful checkouts.
// Label:
//   - channel: "self" (student checkout) or "admin" (admin lends to a student)
var LoansCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_created_total",
		Help:      "Total number of loans created, by channel.",
	},
	[]string{"channel"},
)

// LoansReturnedTotal counts completed returns.
// Label:
//   - overdue: "true" when the book came back after its due date
var LoansReturnedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_returned_total",
		Help:      "Total number of loans returned, by whether they were overdue.",
	},
	[]string{"overdue"},
)

// LoanErrorsTotal counts rejected loan operations.
// Labels:
//   - op: "create" or "return"
//   - reason: see Reason
var LoanErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loan_errors_total",
		Help:      "Total number of loan operations that failed, by operation and reason.",
	},
	[]string{"op", "reason"},
)

// LoanReplaysTotal counts checkouts answered from an earlier Idempotency-Key.
var LoanReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of checkout requests answered with an existing loan.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "failure" or "rate_limited"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// Reason maps an operation error onto a bounded label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrDuplicateLoan):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrInventory):
		return "inventory"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "other"
	}
}
