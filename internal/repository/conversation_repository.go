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

// ConversationRepository defines methods for recording Messenger threads
type ConversationRepository interface {
	RecordInbound(ctx context.Context, conversation *models.Conversation) (bool, error)
	MarkReplied(ctx context.Context, conversationID, lastMessage string) error
}

// PostgresConversationRepository is a PostgreSQL implementation of ConversationRepository
type PostgresConversationRepository struct {
	db *database.Pool
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *database.Pool) ConversationRepository {
	return &PostgresConversationRepository{
		db: db,
	}
}

// RecordInbound upserts the thread for an inbound message, bumping its unread
// count. It reports whether the thread was created by this call.
func (r *PostgresConversationRepository) RecordInbound(ctx context.Context, conversation *models.Conversation) (bool, error) {
	startTime := time.Now()

	query := `
        INSERT INTO ` + constants.TableConversations + ` AS c (conversation_id, page_id, user_id, user_name, status, last_message, unread_count)
        VALUES ($1, $2, $3, $4, 'unread', $5, 1)
        ON CONFLICT (` + constants.ColumnConversationID + `) DO UPDATE
        SET last_message = EXCLUDED.last_message,
            unread_count = c.unread_count + 1,
            status = 'unread',
            updated_at = NOW()
        RETURNING c.id, c.unread_count, (xmax = 0) AS inserted
    `
	args := []interface{}{
		conversation.ConversationID,
		conversation.PageID,
		conversation.UserID,
		conversation.UserName,
		conversation.LastMessage,
	}

	var inserted bool
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&conversation.ID, &conversation.UnreadCount, &inserted)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to record conversation: %w", err)
	}

	conversation.Status = models.ConversationStatusUnread
	return inserted, nil
}

// MarkReplied records a bot reply on the thread
func (r *PostgresConversationRepository) MarkReplied(ctx context.Context, conversationID, lastMessage string) error {
	startTime := time.Now()

	query := `
        UPDATE ` + constants.TableConversations + `
        SET status = 'replied', last_message = $1, unread_count = 0, updated_at = NOW()
        WHERE ` + constants.ColumnConversationID + ` = $2
    `

	result, err := r.db.ExecContext(ctx, query, lastMessage, conversationID)

	utils.LogDBQuery(query, []interface{}{lastMessage, conversationID}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to mark conversation replied: %w", err)
	}

	return expectAffected(result, "Conversation", conversationID)
}
