package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/library-system/internal/core/ports"
)

// BookHandler handles HTTP requests for the catalog.
type BookHandler struct {
	service ports.CatalogService
}

func NewBookHandler(service ports.CatalogService) *BookHandler {
	return &BookHandler{service: service}
}

// List handles GET /v1/books.
//
// @Summary      Search the catalog
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        q         query     string  false  "Substring of title, author or ISBN"
// @Param        category  query     string  false  "Exact category"
// @Success      200       {object}  listBooksResponse
// @Failure      401       {object}  errorResponse
// @Router       /v1/books [get]
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.service.SearchBooks(c.Request().Context(), ports.BookFilter{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listBooksResponse{Data: toBookResponses(books)})
}

// Categories handles GET /v1/books/categories.
//
// @Summary      List catalog categories
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  categoriesResponse
// @Router       /v1/books/categories [get]
func (h *BookHandler) Categories(c echo.Context) error {
	cats, err := h.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	if cats == nil {
		cats = []string{}
	}
	return c.JSON(http.StatusOK, categoriesResponse{Data: cats})
}

// Get handles GET /v1/books/:id.
//
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  bookResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	book, err := h.service.GetBook(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Create handles POST /v1/admin/books.
//
// @Summary      Add a book
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bookRequest  true  "Book details"
// @Success      201   {object}  bookResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/books [post]
func (h *BookHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req bookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	book, err := h.service.AddBook(c.Request().Context(), actor, toBookInput(req))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, bookPath(book.ID))
	return c.JSON(http.StatusCreated, toBookResponse(book))
}

// Update handles PUT /v1/admin/books/:id. Changing total_copies shifts
// available_copies by the same amount, floored at zero.
//
// @Summary      Edit a book
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Book ID"
// @Param        body  body      bookRequest  true  "Book details"
// @Success      200   {object}  bookResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/books/{id} [put]
func (h *BookHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req bookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	book, err := h.service.UpdateBook(c.Request().Context(), actor, id, toBookInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Delete handles DELETE /v1/admin/books/:id.
//
// @Summary      Delete a book
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "Book ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse  "book has active loans"
// @Router       /v1/admin/books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteBook(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdjustAvailability handles POST /v1/admin/books/:id/availability.
//
// @Summary      Shift available copies by one
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Book ID"
// @Param        body  body      availabilityRequest  true  "delta is -1 or 1"
// @Success      200   {object}  bookResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/books/{id}/availability [post]
func (h *BookHandler) AdjustAvailability(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req availabilityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	book, err := h.service.AdjustAvailability(c.Request().Context(), actor, id, req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}
