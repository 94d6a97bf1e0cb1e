package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

type UserRepository struct {
	s *Store
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, u *domain.User, audit *domain.ActionLog) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.ErrUserExists
		}
	}

	now := s.now()
	s.lastUserID++
	stored := cloneUser(u)
	stored.ID = s.lastUserID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.users[stored.ID] = stored
	s.appendLog(audit)
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

// countAdmins must be called with s.mu held.
func (s *Store) countAdmins() int64 {
	var n int64
	for _, u := range s.users {
		if u.Role.IsAdmin() {
			n++
		}
	}
	return n
}

func (r *UserRepository) SetRole(_ context.Context, id int64, from, to domain.Role, audit *domain.ActionLog) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	if stored.Role != from {
		return nil, fmt.Errorf("user %d role changed concurrently: %w", id, domain.ErrConflict)
	}
	if from.IsAdmin() && !to.IsAdmin() && s.countAdmins() <= 1 {
		return nil, domain.ErrLastAdmin
	}

	next := cloneUser(stored)
	next.Role = to
	next.UpdatedAt = s.now()
	s.users[id] = next
	s.appendLog(audit)
	return cloneUser(next), nil
}

func (r *UserRepository) Delete(_ context.Context, id int64, audit *domain.ActionLog) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	for _, l := range s.loans {
		if l.UserID == id {
			return fmt.Errorf("user %d has loans: %w", id, domain.ErrConflict)
		}
	}
	if stored.Role.IsAdmin() && s.countAdmins() <= 1 {
		return domain.ErrLastAdmin
	}

	s.appendLog(audit)
	for _, e := range s.logs {
		if e.UserID != nil && *e.UserID == id {
			e.UserID = nil
		}
	}
	delete(s.users, id)
	return nil
}
