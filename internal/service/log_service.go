package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
)

// LogService exposes the action log of owned pages and enforces retention
type LogService struct {
	pages     PageOwnership
	logs      repository.ActionLogRepository
	retention time.Duration
	now       func() time.Time
}

// NewLogService creates a new LogService. Entries older than retention are
// removed by Cleanup.
func NewLogService(pages PageOwnership, logs repository.ActionLogRepository, retention time.Duration) *LogService {
	return &LogService{
		pages:     pages,
		logs:      logs,
		retention: retention,
		now:       time.Now,
	}
}

// List returns a filtered page of log entries for an owned page
func (s *LogService) List(ctx context.Context, ownerID int64, filter models.ActionLogFilter) ([]*models.ActionLog, int, error) {
	if _, err := s.pages.GetPage(ctx, ownerID, filter.PageID); err != nil {
		return nil, 0, err
	}

	entries, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list action logs: %w", err)
	}
	return entries, total, nil
}

// Stats summarises the log entries of an owned page
func (s *LogService) Stats(ctx context.Context, ownerID int64, pageID string) (*models.LogStats, error) {
	if _, err := s.pages.GetPage(ctx, ownerID, pageID); err != nil {
		return nil, err
	}
	return s.logs.Stats(ctx, pageID)
}

// Cleanup deletes log entries older than the retention window
func (s *LogService) Cleanup(ctx context.Context) (*models.CleanupResult, error) {
	cutoff := s.now().Add(-s.retention)

	deleted, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to clean up action logs: %w", err)
	}

	log.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("Action log retention cleanup completed")

	return &models.CleanupResult{Deleted: deleted, Cutoff: cutoff}, nil
}
