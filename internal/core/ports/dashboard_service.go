package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// AdminDashboard holds the library-wide counters.
type AdminDashboard struct {
	TotalBooks   int64
	TotalUsers   int64
	ActiveLoans  int64
	OverdueLoans int64
	RecentLogs   []*domain.ActionLog
}

// StudentDashboard holds a student's own loans and new arrivals.
type StudentDashboard struct {
	ActiveLoans []LoanView
	RecentBooks []*domain.Book
}

type DashboardService interface {
	Admin(ctx context.Context, actor domain.Actor) (*AdminDashboard, error)
	Student(ctx context.Context, actor domain.Actor) (*StudentDashboard, error)
}
