package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// UserRepository is the Identity Store.
type UserRepository interface {
	// Create fails with domain.ErrUserExists on a username or email clash.
	Create(ctx context.Context, u *domain.User, audit *domain.ActionLog) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)

	// SetRole changes the role of user id from `from` to `to`. It fails with
	// domain.ErrConflict when the stored role is no longer `from`, and with
	// domain.ErrLastAdmin when it would demote the only admin.
	SetRole(ctx context.Context, id int64, from, to domain.Role, audit *domain.ActionLog) (*domain.User, error)

	// Delete fails with domain.ErrConflict when loans reference the user and
	// with domain.ErrLastAdmin when the user is the only admin. Action logs
	// written by the user are kept with a NULL user reference.
	Delete(ctx context.Context, id int64, audit *domain.ActionLog) error
}
