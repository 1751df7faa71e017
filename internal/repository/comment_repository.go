package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/database"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// CommentRepository defines methods for recording page comments
type CommentRepository interface {
	Upsert(ctx context.Context, comment *models.Comment) error
	UpdateStatus(ctx context.Context, commentID string, status models.CommentStatus, reply string) error
}

// PostgresCommentRepository is a PostgreSQL implementation of CommentRepository
type PostgresCommentRepository struct {
	db *database.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *database.Pool) CommentRepository {
	return &PostgresCommentRepository{
		db: db,
	}
}

// Upsert stores a comment, refreshing the content of one seen before
func (r *PostgresCommentRepository) Upsert(ctx context.Context, comment *models.Comment) error {
	startTime := time.Now()

	query := `
        INSERT INTO ` + constants.TableComments + ` (comment_id, page_id, post_id, user_id, user_name, content, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (` + constants.ColumnCommentID + `) DO UPDATE
        SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
        RETURNING id, status
    `
	args := []interface{}{
		comment.CommentID,
		comment.PageID,
		comment.PostID,
		comment.UserID,
		comment.UserName,
		comment.Content,
		string(comment.Status),
		comment.CreatedAt,
		comment.UpdatedAt,
	}

	err := r.db.QueryRowContext(ctx, query, args...).Scan(&comment.ID, &comment.Status)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to upsert comment: %w", err)
	}

	return nil
}

// UpdateStatus records the moderation outcome of a comment
func (r *PostgresCommentRepository) UpdateStatus(ctx context.Context, commentID string, status models.CommentStatus, reply string) error {
	startTime := time.Now()

	query := `
        UPDATE ` + constants.TableComments + `
        SET status = $1, reply = $2, updated_at = NOW()
        WHERE ` + constants.ColumnCommentID + ` = $3
    `
	args := []interface{}{string(status), reply, commentID}

	result, err := r.db.ExecContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to update comment status: %w", err)
	}

	return expectAffected(result, "Comment", commentID)
}
