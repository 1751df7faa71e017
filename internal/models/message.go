package models

import (
	"time"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// MessageSender identifies who wrote a message.
type MessageSender string

const (
	MessageSenderUser MessageSender = "user"
	MessageSenderBot  MessageSender = "bot"
)

// Message is a single Messenger message inside a conversation.
type Message struct {
	ID             int64         `json:"id" db:"message_id"`
	ConversationID string        `json:"conversation_id" db:"conversation_id"`
	Sender         MessageSender `json:"sender" db:"sender"`
	Content        string        `json:"content" db:"content"`
	ExternalID     string        `json:"external_id,omitempty" db:"external_id"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// TableName returns the database table name for the Message model.
func (m *Message) TableName() string {
	return constants.TableMessages
}

// NewMessage creates a message record for a conversation.
func NewMessage(conversationID string, sender MessageSender, content, externalID string) *Message {
	return &Message{
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
		ExternalID:     externalID,
		CreatedAt:      time.Now(),
	}
}

// SendMessageRequest is the payload for a message sent by a page owner from the dashboard.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,notblank,max=64"`
	Text        string `json:"text" validate:"required,notblank,max=2000"`
}
