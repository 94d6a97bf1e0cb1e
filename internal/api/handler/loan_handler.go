package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/library-system/internal/api/metrics"
	"github.com/biblioteca/library-system/internal/core/ports"
)

const idempotencyHeader = "Idempotency-Key"

// LoanHandler handles HTTP requests for the loan ledger.
type LoanHandler struct {
	service ports.LoanService
}

func NewLoanHandler(service ports.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// Create handles POST /v1/books/:id/loans: the caller borrows the book.
//
// @Summary      Borrow a book
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      int     true   "Book ID"
// @Param        Idempotency-Key  header    string  false  "Replays the original loan on retry"
// @Success      201              {object}  loanResponse
// @Success      200              {object}  loanResponse  "idempotent replay"
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse  "no copies available, already borrowed, or Idempotency-Key reused"
// @Router       /v1/books/{id}/loans [post]
func (h *LoanHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.service.CreateLoan(c.Request().Context(), actor, ports.CreateLoanInput{
		BookID:         bookID,
		IdempotencyKey: c.Request().Header.Get(idempotencyHeader),
	})
	return h.created(c, "self", result, err)
}

// CreateForStudent handles POST /v1/admin/loans.
//
// @Summary      Lend a book to a student
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string            false  "Replays the original loan on retry"
// @Param        body             body      adminLoanRequest  true   "Student and book"
// @Success      201              {object}  loanResponse
// @Success      200              {object}  loanResponse  "idempotent replay"
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse  "already borrowed, no copies available, or Idempotency-Key reused"
// @Router       /v1/admin/loans [post]
func (h *LoanHandler) CreateForStudent(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req adminLoanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.service.CreateLoanForStudent(c.Request().Context(), actor, ports.AdminLoanInput{
		StudentID:      req.StudentID,
		BookID:         req.BookID,
		IdempotencyKey: c.Request().Header.Get(idempotencyHeader),
	})
	return h.created(c, "admin", result, err)
}

func (h *LoanHandler) created(c echo.Context, channel string, result *ports.CreateLoanResult, err error) error {
	if err != nil {
		metrics.LoanErrorsTotal.WithLabelValues("create", metrics.Reason(err)).Inc()
		return err
	}

	resp := toLoanResponse(result.Loan)
	if result.AlreadyExisted {
		metrics.LoanReplaysTotal.Inc()
		return c.JSON(http.StatusOK, resp)
	}

	metrics.LoansCreatedTotal.WithLabelValues(channel).Inc()
	c.Response().Header().Set(echo.HeaderLocation, resp.Links.Self)
	return c.JSON(http.StatusCreated, resp)
}

// Return handles POST /v1/loans/:id/return.
//
// @Summary      Return a borrowed book
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Loan ID"
// @Success      200  {object}  loanResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse  "loan already returned"
// @Router       /v1/loans/{id}/return [post]
func (h *LoanHandler) Return(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.service.ReturnLoan(c.Request().Context(), actor, loanID)
	if err != nil {
		metrics.LoanErrorsTotal.WithLabelValues("return", metrics.Reason(err)).Inc()
		return err
	}

	late := view.ReturnDate != nil && view.ReturnDate.After(view.DueDate)
	metrics.LoansReturnedTotal.WithLabelValues(strconv.FormatBool(late)).Inc()
	return c.JSON(http.StatusOK, toLoanResponse(*view))
}

// Get handles GET /v1/loans/:id.
//
// @Summary      Get a loan
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Loan ID"
// @Success      200  {object}  loanResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/loans/{id} [get]
func (h *LoanHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.service.GetLoan(c.Request().Context(), actor, loanID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoanResponse(*view))
}

// Mine handles GET /v1/loans/mine.
//
// @Summary      The caller's active and recently returned loans
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  myLoansResponse
// @Router       /v1/loans/mine [get]
func (h *LoanHandler) Mine(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	result, err := h.service.MyLoans(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, myLoansResponse{
		Active:   toLoanResponses(result.Active),
		Returned: toLoanResponses(result.Returned),
	})
}

// List handles GET /v1/admin/loans.
//
// @Summary      List all loans
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "all, active, returned or overdue"  Enums(all, active, returned, overdue)
// @Success      200     {object}  listLoansResponse
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/admin/loans [get]
func (h *LoanHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	status, err := ports.ParseLoanStatusFilter(c.QueryParam("status"))
	if err != nil {
		return err
	}

	views, err := h.service.ListLoans(c.Request().Context(), actor, status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listLoansResponse{Data: toLoanResponses(views)})
}
