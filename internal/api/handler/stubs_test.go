package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/library-system/internal/api/middleware"
	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

var (
	adminActor   = domain.Actor{ID: 1, Username: "admin", Role: domain.RoleAdmin}
	studentActor = domain.Actor{ID: 2, Username: "estudiante", Role: domain.RoleStudent}
)

// newContext builds an echo context for a request with an optional JSON body
// and, when actor is non-nil, the identity the Auth middleware would set.
func newContext(method, target string, body io.Reader, actor *domain.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set(middleware.ActorKey, *actor)
		c.Set("role", string(actor.Role))
	}
	return c, rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func expectHTTPCode(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d", code, he.Code)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
}

// --- Auth ---

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) ResolveActor(context.Context, int64) (domain.Actor, error) {
	return domain.Actor{}, errors.New("not used")
}

// --- Catalog ---

type stubCatalogService struct {
	addFn        func(ctx context.Context, actor domain.Actor, input ports.BookInput) (*domain.Book, error)
	updateFn     func(ctx context.Context, actor domain.Actor, id int64, input ports.BookInput) (*domain.Book, error)
	deleteFn     func(ctx context.Context, actor domain.Actor, id int64) error
	adjustFn     func(ctx context.Context, actor domain.Actor, id int64, delta int) (*domain.Book, error)
	getFn        func(ctx context.Context, id int64) (*domain.Book, error)
	searchFn     func(ctx context.Context, filter ports.BookFilter) ([]*domain.Book, error)
	categoriesFn func(ctx context.Context) ([]string, error)
}

func (s *stubCatalogService) AddBook(ctx context.Context, actor domain.Actor, input ports.BookInput) (*domain.Book, error) {
	return s.addFn(ctx, actor, input)
}

func (s *stubCatalogService) UpdateBook(ctx context.Context, actor domain.Actor, id int64, input ports.BookInput) (*domain.Book, error) {
	return s.updateFn(ctx, actor, id, input)
}

func (s *stubCatalogService) DeleteBook(ctx context.Context, actor domain.Actor, id int64) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubCatalogService) AdjustAvailability(ctx context.Context, actor domain.Actor, id int64, delta int) (*domain.Book, error) {
	return s.adjustFn(ctx, actor, id, delta)
}

func (s *stubCatalogService) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) SearchBooks(ctx context.Context, filter ports.BookFilter) ([]*domain.Book, error) {
	return s.searchFn(ctx, filter)
}

func (s *stubCatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.categoriesFn(ctx)
}

// --- Loans ---

type stubLoanService struct {
	createFn    func(ctx context.Context, actor domain.Actor, input ports.CreateLoanInput) (*ports.CreateLoanResult, error)
	createForFn func(ctx context.Context, actor domain.Actor, input ports.AdminLoanInput) (*ports.CreateLoanResult, error)
	returnFn    func(ctx context.Context, actor domain.Actor, loanID int64) (*ports.LoanView, error)
	getFn       func(ctx context.Context, actor domain.Actor, loanID int64) (*ports.LoanView, error)
	myLoansFn   func(ctx context.Context, actor domain.Actor) (*ports.MyLoansResult, error)
	listFn      func(ctx context.Context, actor domain.Actor, status ports.LoanStatusFilter) ([]ports.LoanView, error)
}

func (s *stubLoanService) CreateLoan(ctx context.Context, actor domain.Actor, input ports.CreateLoanInput) (*ports.CreateLoanResult, error) {
	return s.createFn(ctx, actor, input)
}

func (s *stubLoanService) CreateLoanForStudent(ctx context.Context, actor domain.Actor, input ports.AdminLoanInput) (*ports.CreateLoanResult, error) {
	return s.createForFn(ctx, actor, input)
}

func (s *stubLoanService) ReturnLoan(ctx context.Context, actor domain.Actor, loanID int64) (*ports.LoanView, error) {
	return s.returnFn(ctx, actor, loanID)
}

func (s *stubLoanService) GetLoan(ctx context.Context, actor domain.Actor, loanID int64) (*ports.LoanView, error) {
	return s.getFn(ctx, actor, loanID)
}

func (s *stubLoanService) MyLoans(ctx context.Context, actor domain.Actor) (*ports.MyLoansResult, error) {
	return s.myLoansFn(ctx, actor)
}

func (s *stubLoanService) ListLoans(ctx context.Context, actor domain.Actor, status ports.LoanStatusFilter) ([]ports.LoanView, error) {
	return s.listFn(ctx, actor, status)
}

// --- Users ---

type stubUserService struct {
	addFn    func(ctx context.Context, actor domain.Actor, input ports.NewUserInput) (*domain.User, error)
	toggleFn func(ctx context.Context, actor domain.Actor, userID int64) (*domain.User, error)
	deleteFn func(ctx context.Context, actor domain.Actor, userID int64) error
	listFn   func(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
	meFn     func(ctx context.Context, actor domain.Actor) (*domain.User, error)
}

func (s *stubUserService) AddUser(ctx context.Context, actor domain.Actor, input ports.NewUserInput) (*domain.User, error) {
	return s.addFn(ctx, actor, input)
}

func (s *stubUserService) ToggleRole(ctx context.Context, actor domain.Actor, userID int64) (*domain.User, error) {
	return s.toggleFn(ctx, actor, userID)
}

func (s *stubUserService) DeleteUser(ctx context.Context, actor domain.Actor, userID int64) error {
	return s.deleteFn(ctx, actor, userID)
}

func (s *stubUserService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	return s.listFn(ctx, actor)
}

func (s *stubUserService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.meFn(ctx, actor)
}

// --- Dashboard / audit ---

type stubDashboardService struct {
	adminFn   func(ctx context.Context, actor domain.Actor) (*ports.AdminDashboard, error)
	studentFn func(ctx context.Context, actor domain.Actor) (*ports.StudentDashboard, error)
}

func (s *stubDashboardService) Admin(ctx context.Context, actor domain.Actor) (*ports.AdminDashboard, error) {
	return s.adminFn(ctx, actor)
}

func (s *stubDashboardService) Student(ctx context.Context, actor domain.Actor) (*ports.StudentDashboard, error) {
	return s.studentFn(ctx, actor)
}

type stubAuditService struct {
	recentFn func(ctx context.Context, actor domain.Actor, limit int) ([]*domain.ActionLog, error)
}

func (s *stubAuditService) Record(context.Context, *domain.Actor, string) error { return nil }

func (s *stubAuditService) Recent(ctx context.Context, actor domain.Actor, limit int) ([]*domain.ActionLog, error) {
	return s.recentFn(ctx, actor, limit)
}
