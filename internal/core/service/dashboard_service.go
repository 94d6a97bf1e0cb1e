package service

import (
	"context"
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

const dashboardListSize = 5

type DashboardService struct {
	books  ports.BookRepository
	users  ports.UserRepository
	loans  ports.LoanRepository
	logs   ports.ActionLogRepository
	ledger *LoanService
	now    func() time.Time
}

var _ ports.DashboardService = (*DashboardService)(nil)

func NewDashboardService(books ports.BookRepository, users ports.UserRepository, loans ports.LoanRepository, logs ports.ActionLogRepository, ledger *LoanService) *DashboardService {
	return &DashboardService{
		books:  books,
		users:  users,
		loans:  loans,
		logs:   logs,
		ledger: ledger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *DashboardService) Admin(ctx context.Context, actor domain.Actor) (*ports.AdminDashboard, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		d   ports.AdminDashboard
		err error
	)
	if d.TotalBooks, err = s.books.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if d.ActiveLoans, err = s.loans.Count(ctx, ports.ListLoansFilter{Status: ports.LoanFilterActive}); err != nil {
		return nil, err
	}
	if d.OverdueLoans, err = s.loans.Count(ctx, ports.ListLoansFilter{Status: ports.LoanFilterOverdue, AsOf: s.now()}); err != nil {
		return nil, err
	}
	if d.RecentLogs, err = s.logs.Recent(ctx, dashboardListSize); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DashboardService) Student(ctx context.Context, actor domain.Actor) (*ports.StudentDashboard, error) {
	mine, err := s.ledger.MyLoans(ctx, actor)
	if err != nil {
		return nil, err
	}
	recent, err := s.books.Recent(ctx, dashboardListSize)
	if err != nil {
		return nil, err
	}
	return &ports.StudentDashboard{ActiveLoans: mine.Active, RecentBooks: recent}, nil
}
