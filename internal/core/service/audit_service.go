package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

const defaultRecentLogs = 50

type AuditService struct {
	logs   ports.ActionLogRepository
	logger zerolog.Logger
}

var _ ports.AuditService = (*AuditService)(nil)

func NewAuditService(logs ports.ActionLogRepository, logger zerolog.Logger) *AuditService {
	return &AuditService{logs: logs, logger: logger}
}

// Record appends a standalone entry. Storage failures are returned, never
// swallowed.
func (s *AuditService) Record(ctx context.Context, actor *domain.Actor, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.ErrValidation
	}
	if _, err := s.logs.Append(ctx, domain.NewActionLog(actor, description)); err != nil {
		s.logger.Error().Err(err).Str("action", description).Msg("failed to record action")
		return err
	}
	return nil
}

func (s *AuditService) Recent(ctx context.Context, actor domain.Actor, limit int) ([]*domain.ActionLog, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLogs
	}
	return s.logs.Recent(ctx, limit)
}
