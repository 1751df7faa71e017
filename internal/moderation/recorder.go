package moderation

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// maxPreviewLength bounds the last_message preview kept on a conversation
const maxPreviewLength = 500

// Recorder keeps the comment and conversation records touched by the
// pipeline. Every write is best effort: failures are logged and never stop
// moderation. A nil Recorder records nothing.
type Recorder struct {
	comments      repository.CommentRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

// NewRecorder creates a Recorder
func NewRecorder(
	comments repository.CommentRepository,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
) *Recorder {
	return &Recorder{
		comments:      comments,
		conversations: conversations,
		messages:      messages,
	}
}

// CommentReceived stores a comment as pending
func (r *Recorder) CommentReceived(ctx context.Context, ev Event) {
	if r == nil || ev.CommentID == "" {
		return
	}

	comment := models.NewComment(ev.CommentID, ev.PageID, ev.PostID, ev.UserID, ev.UserName, ev.Text)
	if err := r.comments.Upsert(ctx, comment); err != nil {
		r.warn(err, ev, "Failed to record comment")
	}
}

// CommentModerated stores the moderation outcome of a comment
func (r *Recorder) CommentModerated(ctx context.Context, ev Event, status models.CommentStatus, reply string) {
	if r == nil || ev.CommentID == "" {
		return
	}

	if err := r.comments.UpdateStatus(ctx, ev.CommentID, status, reply); err != nil {
		r.warn(err, ev, "Failed to update comment status")
	}
}

// MessageReceived records an inbound message on its conversation. It reports
// whether the conversation was opened by this message.
func (r *Recorder) MessageReceived(ctx context.Context, ev Event) (bool, error) {
	if r == nil {
		return false, nil
	}

	conversation := &models.Conversation{
		ConversationID: models.ConversationKey(ev.PageID, ev.UserID),
		PageID:         ev.PageID,
		UserID:         ev.UserID,
		UserName:       ev.UserName,
		LastMessage:    utils.TruncateString(ev.Text, maxPreviewLength),
	}

	inserted, err := r.conversations.RecordInbound(ctx, conversation)
	if err != nil {
		r.warn(err, ev, "Failed to record conversation")
		return false, err
	}

	message := models.NewMessage(conversation.ConversationID, models.MessageSenderUser, ev.Text, ev.MessageID)
	if err := r.messages.Create(ctx, message); err != nil {
		r.warn(err, ev, "Failed to record message")
	}

	return inserted, nil
}

// BotReplied records a message the bot sent to the event's author
func (r *Recorder) BotReplied(ctx context.Context, ev Event, text, externalID string) {
	if r == nil {
		return
	}

	conversationID := models.ConversationKey(ev.PageID, ev.UserID)

	message := models.NewMessage(conversationID, models.MessageSenderBot, text, externalID)
	if err := r.messages.Create(ctx, message); err != nil {
		r.warn(err, ev, "Failed to record bot message")
		return
	}

	if err := r.conversations.MarkReplied(ctx, conversationID, utils.TruncateString(text, maxPreviewLength)); err != nil {
		r.warn(err, ev, "Failed to mark conversation replied")
	}
}

func (r *Recorder) warn(err error, ev Event, msg string) {
	log.Warn().
		Err(err).
		Str(constants.LogFieldPageID, ev.PageID).
		Str(constants.LogFieldEventKind, string(ev.Kind)).
		Str("user_id", ev.UserID).
		Msg(msg)
}
