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

// MessageRepository defines methods for recording Messenger messages
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
}

// PostgresMessageRepository is a PostgreSQL implementation of MessageRepository
type PostgresMessageRepository struct {
	db *database.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *database.Pool) MessageRepository {
	return &PostgresMessageRepository{
		db: db,
	}
}

// Create stores a message of a conversation
func (r *PostgresMessageRepository) Create(ctx context.Context, message *models.Message) error {
	startTime := time.Now()

	query := `
        INSERT INTO ` + constants.TableMessages + ` (conversation_id, sender, content, external_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING message_id
    `
	args := []interface{}{
		message.ConversationID,
		string(message.Sender),
		message.Content,
		message.ExternalID,
		message.CreatedAt,
	}

	err := r.db.QueryRowContext(ctx, query, args...).Scan(&message.ID)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}
