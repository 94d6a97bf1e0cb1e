package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// NewUserInput is an admin creating an account.
type NewUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// UserService defines identity administration use cases.
type UserService interface {
	AddUser(ctx context.Context, actor domain.Actor, input NewUserInput) (*domain.User, error)
	ToggleRole(ctx context.Context, actor domain.Actor, userID int64) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Actor, userID int64) error
	ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
	Me(ctx context.Context, actor domain.Actor) (*domain.User, error)
}
