package memory

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

type ActionLogRepository struct {
	s *Store
}

var _ ports.ActionLogRepository = (*ActionLogRepository)(nil)

func (r *ActionLogRepository) Append(_ context.Context, entry *domain.ActionLog) (*domain.ActionLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.appendLog(entry), nil
}

// Recent returns the newest entries first.
func (r *ActionLogRepository) Recent(_ context.Context, limit int) ([]*domain.ActionLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*domain.ActionLog{}
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, cloneLog(r.s.logs[i]))
	}
	return out, nil
}
