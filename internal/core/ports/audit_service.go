package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// AuditService exposes the Audit Log.
type AuditService interface {
	// Record appends one entry; a nil actor records a system action.
	Record(ctx context.Context, actor *domain.Actor, description string) error
	Recent(ctx context.Context, actor domain.Actor, limit int) ([]*domain.ActionLog, error)
}
