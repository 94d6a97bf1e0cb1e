package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

type UserService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

var _ ports.UserService = (*UserService)(nil)

func NewUserService(users ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) AddUser(ctx context.Context, actor domain.Actor, input ports.NewUserInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.create(ctx, &actor, input)
}

// Provision creates an account as a system action, for bootstrap tooling.
func (s *UserService) Provision(ctx context.Context, input ports.NewUserInput) (*domain.User, error) {
	return s.create(ctx, nil, input)
}

func (s *UserService) create(ctx context.Context, actor *domain.Actor, input ports.NewUserInput) (*domain.User, error) {
	role := domain.RoleStudent
	if strings.TrimSpace(input.Role) != "" {
		var err error
		if role, err = domain.ParseRole(input.Role); err != nil {
			return nil, err
		}
	}
	user, err := newUser(input.Username, input.Email, input.Password, input.FirstName, input.LastName, role)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, user, domain.NewActionLog(actor, fmt.Sprintf("Added user '%s'", user.FullName())))
	if err != nil {
		return nil, err
	}
	by := "system"
	if actor != nil {
		by = actor.Username
	}
	s.logger.Info().Int64("user_id", created.ID).Str("role", string(role)).Str("by", by).Msg("user added")
	return created, nil
}

// ToggleRole flips a user between admin and student. Demoting the only
// administrator fails with ErrLastAdmin.
func (s *UserService) ToggleRole(ctx context.Context, actor domain.Actor, userID int64) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to := user.Role, user.Role.Toggled()
	entry := domain.NewActionLog(&actor, fmt.Sprintf("Changed role of %s to '%s'", user.FullName(), to))
	updated, err := s.users.SetRole(ctx, userID, from, to, entry)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("role change rejected")
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Str("from", string(from)).Str("to", string(to)).Msg("role changed")
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actor domain.Actor, userID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID, domain.NewActionLog(&actor, fmt.Sprintf("Deleted user '%s'", user.FullName()))); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", userID).Str("by", actor.Username).Msg("user deleted")
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *UserService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.users.FindByID(ctx, actor.ID)
}

// newUser validates the fields shared by registration and admin creation and
// hashes the password.
func newUser(username, email, password, first, last string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(first),
		LastName:     strings.TrimSpace(last),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
