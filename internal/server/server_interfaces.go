package server

import (
	"context"

	"github.com/yasinhessnawi1/pageguard/internal/models"
)

// ServerDBHealthChecker is the part of the connection pool the server owns:
// it backs GET /health and is closed last on shutdown.
type ServerDBHealthChecker interface {
	HealthCheck(ctx context.Context) error
	Close()
}

// LogCleaner removes action logs older than the retention window. The
// maintenance scheduler calls it on the configured cron schedule.
type LogCleaner interface {
	Cleanup(ctx context.Context) (*models.CleanupResult, error)
}
