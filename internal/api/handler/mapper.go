package handler

import (
	"strconv"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

// --- Request → Service input ---

func toBookInput(req bookRequest) ports.BookInput {
	in := ports.BookInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		Category:        req.Category,
		Description:     req.Description,
	}
	if req.TotalCopies != nil {
		in.TotalCopies = *req.TotalCopies
	}
	return in
}

func toNewUserInput(req createUserRequest) ports.NewUserInput {
	return ports.NewUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}
}

// --- Service result → HTTP response ---

func bookPath(id int64) string { return "/v1/books/" + strconv.FormatInt(id, 10) }

func loanPath(id int64) string { return "/v1/loans/" + strconv.FormatInt(id, 10) }

func toBookResponse(b *domain.Book) bookResponse {
	return bookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Category:        b.Category,
		Description:     b.Description,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Available:       b.IsAvailable(),
		CreatedAt:       b.CreatedAt.UTC(),
		Links: bookLinks{
			Self:  bookPath(b.ID),
			Loans: bookPath(b.ID) + "/loans",
		},
	}
}

func toBookResponses(books []*domain.Book) []bookResponse {
	out := make([]bookResponse, len(books))
	for i, b := range books {
		out[i] = toBookResponse(b)
	}
	return out
}

func toLoanResponse(v ports.LoanView) loanResponse {
	resp := loanResponse{
		ID:            v.ID,
		UserID:        v.UserID,
		Borrower:      v.Borrower,
		BookID:        v.BookID,
		BookTitle:     v.BookTitle,
		LoanDate:      v.LoanDate.UTC(),
		DueDate:       v.DueDate.UTC(),
		Status:        v.Status,
		IsOverdue:     v.IsOverdue,
		DaysRemaining: v.DaysRemaining,
		Links: loanLinks{
			Self:   loanPath(v.ID),
			Return: loanPath(v.ID) + "/return",
			Book:   bookPath(v.BookID),
		},
	}
	if v.ReturnDate != nil {
		rd := v.ReturnDate.UTC()
		resp.ReturnDate = &rd
	}
	return resp
}

func toLoanResponses(views []ports.LoanView) []loanResponse {
	out := make([]loanResponse, len(views))
	for i, v := range views {
		out[i] = toLoanResponse(v)
	}
	return out
}

func toUserResponse(u *domain.User) *userResponse {
	return &userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func toUserResponses(users []*domain.User) []*userResponse {
	out := make([]*userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

func toActionLogResponses(logs []*domain.ActionLog) []actionLogResponse {
	out := make([]actionLogResponse, len(logs))
	for i, l := range logs {
		out[i] = actionLogResponse{
			ID:        l.ID,
			UserID:    l.UserID,
			Action:    l.Action,
			Timestamp: l.Timestamp.UTC(),
		}
	}
	return out
}
