package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/database"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// ErrAlreadyBlocked is returned when a user already has an active block on the page
var ErrAlreadyBlocked = errors.New("user is already blocked")

// BlockedUserRepository defines methods for interacting with block records
type BlockedUserRepository interface {
	Create(ctx context.Context, blocked *models.BlockedUser) error
	GetActive(ctx context.Context, pageID, userID string) (*models.BlockedUser, error)
	IsBlocked(ctx context.Context, pageID, userID string) (bool, error)
	List(ctx context.Context, filter models.BlockedUserFilter) ([]*models.BlockedUser, int, error)
	Stats(ctx context.Context, pageID string) (*models.BlockStats, error)
	Unblock(ctx context.Context, pageID, userID string) (*models.BlockedUser, error)
}

// PostgresBlockedUserRepository is a PostgreSQL implementation of BlockedUserRepository
type PostgresBlockedUserRepository struct {
	db *database.Pool
}

// NewBlockedUserRepository creates a new BlockedUserRepository
func NewBlockedUserRepository(db *database.Pool) BlockedUserRepository {
	return &PostgresBlockedUserRepository{
		db: db,
	}
}

var blockedUserColumns = []string{
	"blocked_user_id",
	constants.ColumnUserID,
	constants.ColumnUserName,
	constants.ColumnPageID,
	constants.ColumnReason,
	"blocked_by",
	constants.ColumnIsActive,
	constants.ColumnBlockedAt,
	"unblocked_at",
	"notes",
}

const blockedUserSelect = `blocked_user_id, user_id, user_name, page_id, reason, blocked_by,
        is_active, blocked_at, unblocked_at, notes`

// scanBlockedUser reads a row selected with blockedUserColumns
func scanBlockedUser(row rowScanner) (*models.BlockedUser, error) {
	blocked := &models.BlockedUser{}
	var unblockedAt sql.NullTime
	err := row.Scan(
		&blocked.ID,
		&blocked.UserID,
		&blocked.UserName,
		&blocked.PageID,
		&blocked.Reason,
		&blocked.BlockedBy,
		&blocked.IsActive,
		&blocked.BlockedAt,
		&unblockedAt,
		&blocked.Notes,
	)
	if err != nil {
		return nil, err
	}
	if unblockedAt.Valid {
		blocked.UnblockedAt = &unblockedAt.Time
	}
	return blocked, nil
}

// Create inserts an active block. The partial unique index on active blocks
// turns a concurrent duplicate into ErrAlreadyBlocked.
func (r *PostgresBlockedUserRepository) Create(ctx context.Context, blocked *models.BlockedUser) error {
	startTime := time.Now()

	query := `
        INSERT INTO ` + constants.TableBlockedUsers + ` (user_id, user_name, page_id, reason, blocked_by, is_active, blocked_at, notes)
        VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
        RETURNING blocked_user_id
    `
	args := []interface{}{
		blocked.UserID,
		blocked.UserName,
		blocked.PageID,
		string(blocked.Reason),
		blocked.BlockedBy,
		blocked.BlockedAt,
		blocked.Notes,
	}

	err := r.db.QueryRowContext(ctx, query, args...).Scan(&blocked.ID)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		if utils.IsUniqueViolation(err, constants.IndexActiveBlock) {
			return ErrAlreadyBlocked
		}
		return fmt.Errorf("failed to create blocked user: %w", err)
	}

	blocked.IsActive = true

	log.Info().
		Str(constants.ColumnPageID, blocked.PageID).
		Str(constants.ColumnUserID, blocked.UserID).
		Str(constants.ColumnReason, string(blocked.Reason)).
		Msg("User blocked")

	return nil
}

// GetActive retrieves the active block of a user on a page
func (r *PostgresBlockedUserRepository) GetActive(ctx context.Context, pageID, userID string) (*models.BlockedUser, error) {
	startTime := time.Now()

	query := `
        SELECT ` + blockedUserSelect + `
        FROM ` + constants.TableBlockedUsers + `
        WHERE page_id = $1 AND user_id = $2 AND is_active = TRUE
    `

	blocked, err := scanBlockedUser(r.db.QueryRowContext(ctx, query, pageID, userID))

	utils.LogDBQuery(query, []interface{}{pageID, userID}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("BlockedUser", userID)
		}
		return nil, fmt.Errorf("failed to get blocked user: %w", err)
	}

	return blocked, nil
}

// IsBlocked reports whether a user has an active block on a page
func (r *PostgresBlockedUserRepository) IsBlocked(ctx context.Context, pageID, userID string) (bool, error) {
	startTime := time.Now()

	query := `
        SELECT EXISTS(
            SELECT 1 FROM ` + constants.TableBlockedUsers + `
            WHERE page_id = $1 AND user_id = $2 AND is_active = TRUE
        )
    `

	var exists bool
	err := r.db.QueryRowContext(ctx, query, pageID, userID).Scan(&exists)

	utils.LogDBQuery(query, []interface{}{pageID, userID}, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to check blocked user: %w", err)
	}

	return exists, nil
}

// likeEscaper makes search input match literally inside an ILIKE pattern.
// Backslash is the default LIKE escape character in PostgreSQL.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// List returns a page of block records matching the filter and the total match count
func (r *PostgresBlockedUserRepository) List(ctx context.Context, filter models.BlockedUserFilter) ([]*models.BlockedUser, int, error) {
	where := squirrel.And{squirrel.Eq{constants.ColumnPageID: filter.PageID}}
	if filter.Reason != "" {
		where = append(where, squirrel.Eq{constants.ColumnReason: string(filter.Reason)})
	}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{constants.ColumnIsActive: *filter.Active})
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{constants.ColumnUserName: pattern},
			squirrel.ILike{constants.ColumnUserID: pattern},
		})
	}

	total, err := r.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := psql.
		Select(blockedUserColumns...).
		From(constants.TableBlockedUsers).
		Where(where).
		OrderBy(constants.ColumnBlockedAt + " DESC").
		Limit(uint64(clampLimit(filter.Limit))).
		Offset(uint64(max(filter.Offset, 0))).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build blocked users query: %w", err)
	}

	startTime := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list blocked users: %w", err)
	}
	defer closeRows(rows)

	blockedUsers := []*models.BlockedUser{}
	for rows.Next() {
		blocked, err := scanBlockedUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan blocked user: %w", err)
		}
		blockedUsers = append(blockedUsers, blocked)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating blocked users: %w", err)
	}

	return blockedUsers, total, nil
}

// count returns the number of block records matching the condition
func (r *PostgresBlockedUserRepository) count(ctx context.Context, where squirrel.Sqlizer) (int, error) {
	query, args, err := psql.
		Select("COUNT(*)").
		From(constants.TableBlockedUsers).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build blocked users count: %w", err)
	}

	startTime := time.Now()
	var total int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&total)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to count blocked users: %w", err)
	}

	return total, nil
}

// Stats counts the active blocks of a page by reason
func (r *PostgresBlockedUserRepository) Stats(ctx context.Context, pageID string) (*models.BlockStats, error) {
	startTime := time.Now()

	query := `
        SELECT reason, COUNT(*)
        FROM ` + constants.TableBlockedUsers + `
        WHERE page_id = $1 AND is_active = TRUE
        GROUP BY reason
    `

	rows, err := r.db.QueryContext(ctx, query, pageID)

	utils.LogDBQuery(query, []interface{}{pageID}, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to get block stats: %w", err)
	}
	defer closeRows(rows)

	stats := &models.BlockStats{ByReason: map[models.BlockReason]int{}}
	for rows.Next() {
		var reason models.BlockReason
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("failed to scan block stats: %w", err)
		}
		stats.ByReason[reason] = count
		stats.Total += count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating block stats: %w", err)
	}

	return stats, nil
}

// Unblock lifts the active block of a user and returns the updated record
func (r *PostgresBlockedUserRepository) Unblock(ctx context.Context, pageID, userID string) (*models.BlockedUser, error) {
	startTime := time.Now()

	query := `
        UPDATE ` + constants.TableBlockedUsers + `
        SET is_active = FALSE, unblocked_at = NOW()
        WHERE page_id = $1 AND user_id = $2 AND is_active = TRUE
        RETURNING ` + blockedUserSelect

	blocked, err := scanBlockedUser(r.db.QueryRowContext(ctx, query, pageID, userID))

	utils.LogDBQuery(query, []interface{}{pageID, userID}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("BlockedUser", userID)
		}
		return nil, fmt.Errorf("failed to unblock user: %w", err)
	}

	log.Info().
		Str(constants.ColumnPageID, pageID).
		Str(constants.ColumnUserID, userID).
		Msg("User unblocked")

	return blocked, nil
}
