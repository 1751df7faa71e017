package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts
const (
	DBConnectionTimeout    = 30 * time.Second
	DBConnectRetryInterval = 2 * time.Second
	DBHealthCheckTimeout   = 5 * time.Second
	DBConnMaxLifetime      = 1 * time.Hour
	DBConnMaxIdleTime      = 30 * time.Minute

	// MaintenanceTaskTimeout bounds one run of a scheduled maintenance task.
	MaintenanceTaskTimeout = 5 * time.Minute
)

// Rate limiter housekeeping
const (
	RateLimiterCleanupInterval = 10 * time.Minute
	RateLimiterIdleExpiry      = 30 * time.Minute
)
