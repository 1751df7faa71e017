package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// LogType enumerates the kinds of action log entries.
type LogType string

const (
	LogTypeCommentReply    LogType = "comment_reply"
	LogTypeMessageSent     LogType = "message_sent"
	LogTypeCommentDeleted  LogType = "comment_deleted"
	LogTypeUserBlocked     LogType = "user_blocked"
	LogTypeUserUnblocked   LogType = "user_unblocked"
	LogTypeWebhookReceived LogType = "webhook_received"
)

// Valid reports whether the type is a known log type.
func (t LogType) Valid() bool {
	switch t {
	case LogTypeCommentReply, LogTypeMessageSent, LogTypeCommentDeleted,
		LogTypeUserBlocked, LogTypeUserUnblocked, LogTypeWebhookReceived:
		return true
	}
	return false
}

// LogStatus is the outcome recorded on an action log entry.
type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusError   LogStatus = "error"
	LogStatusPending LogStatus = "pending"
)

// Valid reports whether the status is a known log status.
func (s LogStatus) Valid() bool {
	return s == LogStatusSuccess || s == LogStatusError || s == LogStatusPending
}

// LogMetadata is the typed metadata attached to a log entry.
// Each log type has exactly one metadata variant.
type LogMetadata interface {
	LogType() LogType
}

// WebhookReceivedMetadata records a raw webhook delivery. Payload holds the
// body when it is valid JSON, Raw holds it otherwise.
type WebhookReceivedMetadata struct {
	DeliveryID string          `json:"delivery_id,omitempty"`
	Object     string          `json:"object,omitempty"`
	EntryCount int             `json:"entry_count"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Raw        string          `json:"raw,omitempty"`
}

// CommentDeletedMetadata records a comment removed for containing a banned word.
type CommentDeletedMetadata struct {
	CommentID string `json:"comment_id"`
	Reason    string `json:"reason"`
}

// CommentReplyMetadata records an automatic reply to a comment.
type CommentReplyMetadata struct {
	CommentID       string `json:"comment_id"`
	OriginalComment string `json:"original_comment"`
}

// UserBlockedMetadata records an automatic or manual block.
type UserBlockedMetadata struct {
	Reason         BlockReason `json:"reason"`
	ReactionType   string      `json:"reaction_type,omitempty"`
	AlreadyBlocked bool        `json:"already_blocked,omitempty"`
}

// UserUnblockedMetadata records the lifting of a block.
type UserUnblockedMetadata struct {
	BlockedUserID int64 `json:"blocked_user_id"`
	UnblockedBy   int64 `json:"unblocked_by"`
}

// MessageSentMetadata records a message sent to a Messenger user.
type MessageSentMetadata struct {
	RecipientID string `json:"recipient_id"`
	Trigger     string `json:"trigger,omitempty"`
}

func (WebhookReceivedMetadata) LogType() LogType { return LogTypeWebhookReceived }
func (CommentDeletedMetadata) LogType() LogType  { return LogTypeCommentDeleted }
func (CommentReplyMetadata) LogType() LogType    { return LogTypeCommentReply }
func (UserBlockedMetadata) LogType() LogType     { return LogTypeUserBlocked }
func (UserUnblockedMetadata) LogType() LogType   { return LogTypeUserUnblocked }
func (MessageSentMetadata) LogType() LogType     { return LogTypeMessageSent }

// NewWebhookReceivedMetadata builds the metadata for a raw delivery body.
func NewWebhookReceivedMetadata(deliveryID, object string, entryCount int, body []byte) WebhookReceivedMetadata {
	meta := WebhookReceivedMetadata{
		DeliveryID: deliveryID,
		Object:     object,
		EntryCount: entryCount,
	}
	if json.Valid(body) {
		meta.Payload = json.RawMessage(body)
	} else {
		meta.Raw = string(body)
	}
	return meta
}

// ActionLog is an immutable record of something the bot did.
type ActionLog struct {
	ID           int64       `json:"id" db:"log_id"`
	Type         LogType     `json:"type" db:"type"`
	PageID       string      `json:"page_id" db:"page_id"`
	UserID       string      `json:"user_id,omitempty" db:"user_id"`
	UserName     string      `json:"user_name,omitempty" db:"user_name"`
	Content      string      `json:"content,omitempty" db:"content"`
	Metadata     LogMetadata `json:"metadata,omitempty" db:"metadata"`
	Status       LogStatus   `json:"status" db:"status"`
	ErrorMessage string      `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// TableName returns the database table name for the ActionLog model.
func (l *ActionLog) TableName() string {
	return constants.TableActionLogs
}

// NewActionLog creates a successful log entry whose type follows its metadata.
func NewActionLog(pageID, userID, userName, content string, metadata LogMetadata) *ActionLog {
	return &ActionLog{
		Type:      metadata.LogType(),
		PageID:    pageID,
		UserID:    userID,
		UserName:  userName,
		Content:   content,
		Metadata:  metadata,
		Status:    LogStatusSuccess,
		CreatedAt: time.Now(),
	}
}

// Fail marks the entry as failed with the error text. A nil error leaves it unchanged.
func (l *ActionLog) Fail(err error) *ActionLog {
	if err != nil {
		l.Status = LogStatusError
		l.ErrorMessage = err.Error()
	}
	return l
}

// EncodeLogMetadata serialises metadata for the JSONB column.
func EncodeLogMetadata(metadata LogMetadata) ([]byte, error) {
	if metadata == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s metadata: %w", metadata.LogType(), err)
	}
	return data, nil
}

// DecodeLogMetadata restores the metadata variant belonging to the log type.
func DecodeLogMetadata(logType LogType, raw []byte) (LogMetadata, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var target LogMetadata
	switch logType {
	case LogTypeWebhookReceived:
		target = &WebhookReceivedMetadata{}
	case LogTypeCommentDeleted:
		target = &CommentDeletedMetadata{}
	case LogTypeCommentReply:
		target = &CommentReplyMetadata{}
	case LogTypeUserBlocked:
		target = &UserBlockedMetadata{}
	case LogTypeUserUnblocked:
		target = &UserUnblockedMetadata{}
	case LogTypeMessageSent:
		target = &MessageSentMetadata{}
	default:
		return nil, fmt.Errorf("unknown log type %q", logType)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("failed to decode %s metadata: %w", logType, err)
	}

	switch m := target.(type) {
	case *WebhookReceivedMetadata:
		return *m, nil
	case *CommentDeletedMetadata:
		return *m, nil
	case *CommentReplyMetadata:
		return *m, nil
	case *UserBlockedMetadata:
		return *m, nil
	case *UserUnblockedMetadata:
		return *m, nil
	case *MessageSentMetadata:
		return *m, nil
	}
	return target, nil
}

// ActionLogFilter narrows an action log listing.
type ActionLogFilter struct {
	PageID    string
	Type      LogType
	Status    LogStatus
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// LogStats summarises the log entries of a page.
type LogStats struct {
	Total    int               `json:"total"`
	ByType   map[LogType]int   `json:"by_type"`
	ByStatus map[LogStatus]int `json:"by_status"`
}

// CleanupResult reports the outcome of a retention cleanup.
type CleanupResult struct {
	Deleted int64     `json:"deleted"`
	Cutoff  time.Time `json:"cutoff"`
}
