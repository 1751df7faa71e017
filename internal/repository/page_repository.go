package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/database"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// PageRepository defines methods for interacting with connected pages
type PageRepository interface {
	Create(ctx context.Context, page *models.Page) error
	GetByID(ctx context.Context, pageID string) (*models.Page, error)
	GetModerated(ctx context.Context, pageID string) (*models.Page, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Page, error)
	UpdateSettings(ctx context.Context, page *models.Page) error
	SetBotEnabled(ctx context.Context, pageID string, enabled bool) error

	// Banned word operations
	GetBannedWords(ctx context.Context, pageID string) ([]string, error)
	AddBannedWords(ctx context.Context, pageID string, words []string) error
	RemoveBannedWords(ctx context.Context, pageID string, words []string) error
}

// PostgresPageRepository is a PostgreSQL implementation of PageRepository
type PostgresPageRepository struct {
	db *database.Pool
}

// NewPageRepository creates a new PageRepository
func NewPageRepository(db *database.Pool) PageRepository {
	return &PostgresPageRepository{
		db: db,
	}
}

const pageColumns = `page_id, page_name, access_token, owner_id, is_active, bot_enabled,
        welcome_message, auto_reply_message, comment_auto_reply, auto_delete_bad_comments,
        welcome_mode, created_at, updated_at`

// scanPage reads a page row selected with pageColumns
func scanPage(row rowScanner) (*models.Page, error) {
	page := &models.Page{}
	err := row.Scan(
		&page.PageID,
		&page.PageName,
		&page.AccessToken,
		&page.OwnerID,
		&page.IsActive,
		&page.BotEnabled,
		&page.Settings.WelcomeMessage,
		&page.Settings.AutoReplyMessage,
		&page.Settings.CommentAutoReply,
		&page.Settings.AutoDeleteBadComments,
		&page.Settings.WelcomeMode,
		&page.CreatedAt,
		&page.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Create inserts a page together with its banned words
func (r *PostgresPageRepository) Create(ctx context.Context, page *models.Page) error {
	startTime := time.Now()

	query := `
        INSERT INTO ` + constants.TablePages + ` (` + pageColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	args := []interface{}{
		page.PageID,
		page.PageName,
		page.AccessToken,
		page.OwnerID,
		page.IsActive,
		page.BotEnabled,
		page.Settings.WelcomeMessage,
		page.Settings.AutoReplyMessage,
		page.Settings.CommentAutoReply,
		page.Settings.AutoDeleteBadComments,
		string(page.Settings.WelcomeMode),
		page.CreatedAt,
		page.UpdatedAt,
	}

	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)

		utils.LogDBQuery(query, args, time.Since(startTime), err)

		if err != nil {
			if utils.IsDuplicateKeyError(err) {
				return utils.NewDuplicateError("Page", constants.ColumnPageID, page.PageID)
			}
			return fmt.Errorf("failed to create page: %w", err)
		}

		return insertBannedWords(ctx, tx, page.PageID, page.Settings.BannedWords)
	})
	if err != nil {
		return err
	}

	log.Info().
		Str(constants.ColumnPageID, page.PageID).
		Int64(constants.ColumnOwnerID, page.OwnerID).
		Msg("Page connected")

	return nil
}

// GetByID retrieves a page by its Facebook page id
func (r *PostgresPageRepository) GetByID(ctx context.Context, pageID string) (*models.Page, error) {
	query := `
        SELECT ` + pageColumns + `
        FROM ` + constants.TablePages + `
        WHERE ` + constants.ColumnPageID + ` = $1
    `
	return r.getOne(ctx, query, pageID)
}

// GetModerated retrieves a page only when it is active and its bot is enabled
func (r *PostgresPageRepository) GetModerated(ctx context.Context, pageID string) (*models.Page, error) {
	query := `
        SELECT ` + pageColumns + `
        FROM ` + constants.TablePages + `
        WHERE ` + constants.ColumnPageID + ` = $1
        AND ` + constants.ColumnIsActive + ` = TRUE
        AND ` + constants.ColumnBotEnabled + ` = TRUE
    `
	return r.getOne(ctx, query, pageID)
}

// ListByOwner retrieves the pages connected by a dashboard user, oldest first
func (r *PostgresPageRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Page, error) {
	startTime := time.Now()

	query := `
        SELECT ` + pageColumns + `
        FROM ` + constants.TablePages + `
        WHERE ` + constants.ColumnOwnerID + ` = $1
        ORDER BY ` + constants.ColumnCreatedAt + `
    `

	rows, err := r.db.QueryContext(ctx, query, ownerID)

	utils.LogDBQuery(query, []interface{}{ownerID}, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	pages := []*models.Page{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			closeRows(rows)
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}
	closeRows(rows)

	for _, page := range pages {
		words, err := r.GetBannedWords(ctx, page.PageID)
		if err != nil {
			return nil, err
		}
		page.Settings.BannedWords = words
	}

	return pages, nil
}

// getOne runs a single page query and loads the banned words
func (r *PostgresPageRepository) getOne(ctx context.Context, query, pageID string) (*models.Page, error) {
	startTime := time.Now()

	page, err := scanPage(r.db.QueryRowContext(ctx, query, pageID))

	utils.LogDBQuery(query, []interface{}{pageID}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Page", pageID)
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	words, err := r.GetBannedWords(ctx, pageID)
	if err != nil {
		return nil, err
	}
	page.Settings.BannedWords = words

	return page, nil
}

// UpdateSettings saves the moderation settings of a page, excluding banned words
func (r *PostgresPageRepository) UpdateSettings(ctx context.Context, page *models.Page) error {
	startTime := time.Now()
	page.UpdatedAt = time.Now()

	query := `
        UPDATE ` + constants.TablePages + `
        SET welcome_message = $1, auto_reply_message = $2, comment_auto_reply = $3,
            auto_delete_bad_comments = $4, welcome_mode = $5, updated_at = $6
        WHERE ` + constants.ColumnPageID + ` = $7
    `
	args := []interface{}{
		page.Settings.WelcomeMessage,
		page.Settings.AutoReplyMessage,
		page.Settings.CommentAutoReply,
		page.Settings.AutoDeleteBadComments,
		string(page.Settings.WelcomeMode),
		page.UpdatedAt,
		page.PageID,
	}

	result, err := r.db.ExecContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to update page settings: %w", err)
	}

	return expectAffected(result, "Page", page.PageID)
}

// SetBotEnabled turns the bot on or off for a page
func (r *PostgresPageRepository) SetBotEnabled(ctx context.Context, pageID string, enabled bool) error {
	startTime := time.Now()

	query := `
        UPDATE ` + constants.TablePages + `
        SET ` + constants.ColumnBotEnabled + ` = $1, updated_at = NOW()
        WHERE ` + constants.ColumnPageID + ` = $2
    `

	result, err := r.db.ExecContext(ctx, query, enabled, pageID)

	utils.LogDBQuery(query, []interface{}{enabled, pageID}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to toggle bot: %w", err)
	}

	if err := expectAffected(result, "Page", pageID); err != nil {
		return err
	}

	log.Info().
		Str(constants.ColumnPageID, pageID).
		Bool(constants.ColumnBotEnabled, enabled).
		Msg("Bot toggled")

	return nil
}

// GetBannedWords retrieves the banned words of a page
func (r *PostgresPageRepository) GetBannedWords(ctx context.Context, pageID string) ([]string, error) {
	startTime := time.Now()

	query := `
        SELECT ` + constants.ColumnWord + `
        FROM ` + constants.TablePageBannedWords + `
        WHERE ` + constants.ColumnPageID + ` = $1
        ORDER BY ` + constants.ColumnWord + `
    `

	rows, err := r.db.QueryContext(ctx, query, pageID)

	utils.LogDBQuery(query, []interface{}{pageID}, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to get banned words: %w", err)
	}
	defer closeRows(rows)

	words := []string{}
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("failed to scan banned word: %w", err)
		}
		words = append(words, word)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banned words: %w", err)
	}

	return words, nil
}

// AddBannedWords adds words to a page's list, ignoring words already present
func (r *PostgresPageRepository) AddBannedWords(ctx context.Context, pageID string, words []string) error {
	if len(words) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		return insertBannedWords(ctx, tx, pageID, words)
	})
}

// RemoveBannedWords removes words from a page's list
func (r *PostgresPageRepository) RemoveBannedWords(ctx context.Context, pageID string, words []string) error {
	if len(words) == 0 {
		return nil
	}

	startTime := time.Now()

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
            DELETE FROM ` + constants.TablePageBannedWords + `
            WHERE ` + constants.ColumnPageID + ` = $1 AND ` + constants.ColumnWord + ` = $2
        `

		for _, word := range words {
			if _, err := tx.ExecContext(ctx, query, pageID, word); err != nil {
				return fmt.Errorf("failed to remove banned word: %w", err)
			}
		}

		utils.LogDBQuery(
			fmt.Sprintf("Removed %d banned words", len(words)),
			[]interface{}{pageID},
			time.Since(startTime),
			nil,
		)

		return nil
	})
}

// insertBannedWords inserts words inside an open transaction
func insertBannedWords(ctx context.Context, tx *sql.Tx, pageID string, words []string) error {
	if len(words) == 0 {
		return nil
	}

	startTime := time.Now()

	query := `
        INSERT INTO ` + constants.TablePageBannedWords + ` (` + constants.ColumnPageID + `, ` + constants.ColumnWord + `)
        VALUES ($1, $2)
        ON CONFLICT (` + constants.ColumnPageID + `, ` + constants.ColumnWord + `) DO NOTHING
    `

	for _, word := range words {
		if _, err := tx.ExecContext(ctx, query, pageID, word); err != nil {
			return fmt.Errorf("failed to add banned word: %w", err)
		}
	}

	utils.LogDBQuery(
		fmt.Sprintf("Added %d banned words", len(words)),
		[]interface{}{pageID},
		time.Since(startTime),
		nil,
	)

	return nil
}

// expectAffected turns an update that matched no rows into a not found error
func expectAffected(result sql.Result, resourceType string, identifier interface{}) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError(resourceType, identifier)
	}
	return nil
}
