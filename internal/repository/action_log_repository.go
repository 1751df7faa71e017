package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/database"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// ActionLogRepository defines methods for the append-only action log
type ActionLogRepository interface {
	Create(ctx context.Context, entry *models.ActionLog) error
	List(ctx context.Context, filter models.ActionLogFilter) ([]*models.ActionLog, int, error)
	Stats(ctx context.Context, pageID string) (*models.LogStats, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PostgresActionLogRepository is a PostgreSQL implementation of ActionLogRepository
type PostgresActionLogRepository struct {
	db *database.Pool
}

// NewActionLogRepository creates a new ActionLogRepository
func NewActionLogRepository(db *database.Pool) ActionLogRepository {
	return &PostgresActionLogRepository{
		db: db,
	}
}

var actionLogColumns = []string{
	constants.ColumnLogID,
	constants.ColumnType,
	constants.ColumnPageID,
	constants.ColumnUserID,
	constants.ColumnUserName,
	"content",
	"metadata",
	constants.ColumnStatus,
	"error_message",
	constants.ColumnCreatedAt,
}

// Create appends an entry to the action log
func (r *PostgresActionLogRepository) Create(ctx context.Context, entry *models.ActionLog) error {
	startTime := time.Now()

	metadata, err := models.EncodeLogMetadata(entry.Metadata)
	if err != nil {
		return err
	}
	if entry.Status == "" {
		entry.Status = models.LogStatusSuccess
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO ` + constants.TableActionLogs + ` (type, page_id, user_id, user_name, content, metadata, status, error_message, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + constants.ColumnLogID
	args := []interface{}{
		string(entry.Type),
		entry.PageID,
		entry.UserID,
		entry.UserName,
		entry.Content,
		string(metadata),
		string(entry.Status),
		entry.ErrorMessage,
		entry.CreatedAt,
	}

	err = r.db.QueryRowContext(ctx, query, args...).Scan(&entry.ID)

	utils.LogDBQuery(query, args[:5], time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to create action log: %w", err)
	}

	return nil
}

// List returns a page of log entries matching the filter, newest first, and the total match count
func (r *PostgresActionLogRepository) List(ctx context.Context, filter models.ActionLogFilter) ([]*models.ActionLog, int, error) {
	where := squirrel.And{squirrel.Eq{constants.ColumnPageID: filter.PageID}}
	if filter.Type != "" {
		where = append(where, squirrel.Eq{constants.ColumnType: string(filter.Type)})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{constants.ColumnStatus: string(filter.Status)})
	}
	if filter.StartDate != nil {
		where = append(where, squirrel.GtOrEq{constants.ColumnCreatedAt: *filter.StartDate})
	}
	if filter.EndDate != nil {
		where = append(where, squirrel.LtOrEq{constants.ColumnCreatedAt: *filter.EndDate})
	}

	total, err := r.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := psql.
		Select(actionLogColumns...).
		From(constants.TableActionLogs).
		Where(where).
		OrderBy(constants.ColumnCreatedAt+" DESC", constants.ColumnLogID+" DESC").
		Limit(uint64(clampLimit(filter.Limit))).
		Offset(uint64(max(filter.Offset, 0))).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build action logs query: %w", err)
	}

	startTime := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list action logs: %w", err)
	}
	defer closeRows(rows)

	entries := []*models.ActionLog{}
	for rows.Next() {
		entry := &models.ActionLog{}
		var metadata []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.Type,
			&entry.PageID,
			&entry.UserID,
			&entry.UserName,
			&entry.Content,
			&metadata,
			&entry.Status,
			&entry.ErrorMessage,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan action log: %w", err)
		}

		entry.Metadata, err = models.DecodeLogMetadata(entry.Type, metadata)
		if err != nil {
			log.Warn().Err(err).Int64(constants.ColumnLogID, entry.ID).Msg("Skipping unreadable log metadata")
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating action logs: %w", err)
	}

	return entries, total, nil
}

// count returns the number of log entries matching the condition
func (r *PostgresActionLogRepository) count(ctx context.Context, where squirrel.Sqlizer) (int, error) {
	query, args, err := psql.
		Select("COUNT(*)").
		From(constants.TableActionLogs).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build action logs count: %w", err)
	}

	startTime := time.Now()
	var total int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&total)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to count action logs: %w", err)
	}

	return total, nil
}

// Stats counts the log entries of a page by type and status
func (r *PostgresActionLogRepository) Stats(ctx context.Context, pageID string) (*models.LogStats, error) {
	startTime := time.Now()

	query := `
        SELECT type, status, COUNT(*)
        FROM ` + constants.TableActionLogs + `
        WHERE page_id = $1
        GROUP BY type, status
    `

	rows, err := r.db.QueryContext(ctx, query, pageID)

	utils.LogDBQuery(query, []interface{}{pageID}, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to get log stats: %w", err)
	}
	defer closeRows(rows)

	stats := &models.LogStats{
		ByType:   map[models.LogType]int{},
		ByStatus: map[models.LogStatus]int{},
	}
	for rows.Next() {
		var logType models.LogType
		var status models.LogStatus
		var count int
		if err := rows.Scan(&logType, &status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan log stats: %w", err)
		}
		stats.ByType[logType] += count
		stats.ByStatus[status] += count
		stats.Total += count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log stats: %w", err)
	}

	return stats, nil
}

// DeleteOlderThan removes log entries created before the cutoff
func (r *PostgresActionLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	startTime := time.Now()

	query := `DELETE FROM ` + constants.TableActionLogs + ` WHERE ` + constants.ColumnCreatedAt + ` < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)

	utils.LogDBQuery(query, []interface{}{cutoff}, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to delete old action logs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("Old action logs removed")

	return deleted, nil
}
