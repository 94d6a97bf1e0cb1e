package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// RegisterInput is a student signing up.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	// ResolveActor reloads the current identity of an authenticated user id.
	ResolveActor(ctx context.Context, userID int64) (domain.Actor, error)
}
