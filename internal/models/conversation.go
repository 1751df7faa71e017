package models

import (
	"time"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// ConversationStatus is the inbox state of a Messenger conversation.
type ConversationStatus string

const (
	ConversationStatusUnread   ConversationStatus = "unread"
	ConversationStatusRead     ConversationStatus = "read"
	ConversationStatusReplied  ConversationStatus = "replied"
	ConversationStatusArchived ConversationStatus = "archived"
)

// Conversation is the Messenger thread between a page and one user.
type Conversation struct {
	ID             int64              `json:"id" db:"id"`
	ConversationID string             `json:"conversation_id" db:"conversation_id"`
	PageID         string             `json:"page_id" db:"page_id"`
	UserID         string             `json:"user_id" db:"user_id"`
	UserName       string             `json:"user_name,omitempty" db:"user_name"`
	Status         ConversationStatus `json:"status" db:"status"`
	LastMessage    string             `json:"last_message" db:"last_message"`
	UnreadCount    int                `json:"unread_count" db:"unread_count"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}

// TableName returns the database table name for the Conversation model.
func (c *Conversation) TableName() string {
	return constants.TableConversations
}

// ConversationKey returns the identifier of the thread between a page and a user.
func ConversationKey(pageID, userID string) string {
	return pageID + ":" + userID
}
