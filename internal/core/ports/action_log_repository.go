package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// ActionLogRepository is the append-only Audit Log store.
type ActionLogRepository interface {
	Append(ctx context.Context, entry *domain.ActionLog) (*domain.ActionLog, error)
	Recent(ctx context.Context, limit int) ([]*domain.ActionLog, error)
}
