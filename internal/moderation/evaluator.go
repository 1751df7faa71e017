package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/graph"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
)

// Content recorded on user_blocked entries written for angry reactions
const angryReactionContent = "Blocked due to angry reaction"

// Trigger recorded on message_sent entries for welcome messages
const triggerWelcome = "welcome"

// PageActions are the Graph API calls the bot makes for a page
type PageActions interface {
	SendMessage(ctx context.Context, recipientID, text string) (*graph.SendResult, error)
	ReplyToComment(ctx context.Context, commentID, text string) (*graph.ObjectID, error)
	DeleteComment(ctx context.Context, commentID string) error
}

// ActionsFactory returns the Graph API calls bound to a page access token
type ActionsFactory func(accessToken string) PageActions

// GraphActions adapts a Graph client to an ActionsFactory
func GraphActions(client *graph.Client) ActionsFactory {
	return func(accessToken string) PageActions {
		return client.ForToken(accessToken)
	}
}

// BlockList is the block record store used by the evaluator
type BlockList interface {
	IsBlocked(ctx context.Context, pageID, userID string) (bool, error)
	Create(ctx context.Context, blocked *models.BlockedUser) error
}

// ActionLogger appends action log entries
type ActionLogger interface {
	Create(ctx context.Context, entry *models.ActionLog) error
}

// Evaluator runs the moderation policy for events of moderated pages
type Evaluator struct {
	blocks   BlockList
	logs     ActionLogger
	actions  ActionsFactory
	recorder *Recorder
}

// NewEvaluator creates an Evaluator. recorder may be nil.
func NewEvaluator(blocks BlockList, logs ActionLogger, actions ActionsFactory, recorder *Recorder) *Evaluator {
	return &Evaluator{
		blocks:   blocks,
		logs:     logs,
		actions:  actions,
		recorder: recorder,
	}
}

// Handle decides and executes the bot's response to one event. Graph API
// failures do not fail Handle; they are recorded on the log entry. An error
// is returned when the block list cannot be read or the log entry cannot be
// written.
func (e *Evaluator) Handle(ctx context.Context, page *models.Page, ev Event) (Decision, error) {
	blocked := false
	if ev.IsMessaging() && ev.UserID != "" && !ev.Echo {
		var err error
		blocked, err = e.blocks.IsBlocked(ctx, page.PageID, ev.UserID)
		if err != nil {
			return Decision{}, fmt.Errorf("failed to check block list: %w", err)
		}
	}

	decision := Decide(ev, page, blocked)

	logger := log.With().
		Str(constants.LogFieldPageID, page.PageID).
		Str(constants.LogFieldEventKind, string(ev.Kind)).
		Str("user_id", ev.UserID).
		Str("action", string(decision.Action)).
		Logger()

	if decision.Action == ActionIgnore || decision.Action == ActionDrop {
		logger.Debug().Str("reason", decision.Reason).Msg("Event skipped")
		return decision, nil
	}

	// Without a conversation record every message counts as the first one
	newConversation := true
	switch ev.Kind {
	case KindMessage:
		if e.recorder != nil {
			if inserted, err := e.recorder.MessageReceived(ctx, ev); err == nil {
				newConversation = inserted
			}
		}
	case KindComment:
		e.recorder.CommentReceived(ctx, ev)
	}

	var err error
	switch decision.Action {
	case ActionBlockUser:
		err = e.blockForReaction(ctx, page, ev, decision)
	case ActionDeleteComment:
		err = e.deleteComment(ctx, page, ev, decision)
	case ActionReplyComment:
		err = e.replyToComment(ctx, page, ev, decision)
	case ActionWelcome:
		if decision.FirstMessageOnly && !newConversation {
			decision.Action = ActionNone
			decision.Reason = "conversation already welcomed"
			break
		}
		err = e.sendWelcome(ctx, page, ev, decision)
	}

	if err != nil {
		logger.Error().Err(err).Msg("Failed to record moderation action")
		return decision, err
	}

	logger.Debug().Str("reason", decision.Reason).Msg("Event handled")
	return decision, nil
}

// blockForReaction blocks the author of an angry reaction
func (e *Evaluator) blockForReaction(ctx context.Context, page *models.Page, ev Event, decision Decision) error {
	already, blockErr := e.block(ctx, page, ev, decision.BlockReason)

	entry := models.NewActionLog(page.PageID, ev.UserID, ev.UserName, angryReactionContent, models.UserBlockedMetadata{
		Reason:         decision.BlockReason,
		ReactionType:   ev.ReactionType,
		AlreadyBlocked: already,
	}).Fail(blockErr)

	return e.writeLog(ctx, entry)
}

// deleteComment removes a comment with a banned word and blocks its author.
// The block and the log entry are written even when the delete call fails.
func (e *Evaluator) deleteComment(ctx context.Context, page *models.Page, ev Event, decision Decision) error {
	deleteErr := e.actions(page.AccessToken).DeleteComment(ctx, ev.CommentID)
	if deleteErr == nil {
		e.recorder.CommentModerated(ctx, ev, models.CommentStatusDeleted, "")
	} else {
		e.recorder.CommentModerated(ctx, ev, models.CommentStatusRejected, "")
	}

	_, blockErr := e.block(ctx, page, ev, decision.BlockReason)

	entry := models.NewActionLog(page.PageID, ev.UserID, ev.UserName, ev.Text, models.CommentDeletedMetadata{
		CommentID: ev.CommentID,
		Reason:    reasonBadWords,
	}).Fail(errors.Join(deleteErr, blockErr))

	return e.writeLog(ctx, entry)
}

// replyToComment posts the configured auto reply under a comment
func (e *Evaluator) replyToComment(ctx context.Context, page *models.Page, ev Event, decision Decision) error {
	_, replyErr := e.actions(page.AccessToken).ReplyToComment(ctx, ev.CommentID, decision.Text)
	if replyErr == nil {
		e.recorder.CommentModerated(ctx, ev, models.CommentStatusApproved, decision.Text)
	}

	entry := models.NewActionLog(page.PageID, ev.UserID, ev.UserName, decision.Text, models.CommentReplyMetadata{
		CommentID:       ev.CommentID,
		OriginalComment: ev.Text,
	}).Fail(replyErr)

	return e.writeLog(ctx, entry)
}

// sendWelcome sends the welcome message to the author of a message
func (e *Evaluator) sendWelcome(ctx context.Context, page *models.Page, ev Event, decision Decision) error {
	result, sendErr := e.actions(page.AccessToken).SendMessage(ctx, ev.UserID, decision.Text)
	if sendErr == nil {
		e.recorder.BotReplied(ctx, ev, decision.Text, result.MessageID)
	}

	entry := models.NewActionLog(page.PageID, ev.UserID, ev.UserName, decision.Text, models.MessageSentMetadata{
		RecipientID: ev.UserID,
		Trigger:     triggerWelcome,
	}).Fail(sendErr)

	return e.writeLog(ctx, entry)
}

// block creates an active block for the event's author. An existing active
// block is reported as already blocked, not as an error.
func (e *Evaluator) block(ctx context.Context, page *models.Page, ev Event, reason models.BlockReason) (bool, error) {
	blocked := models.NewBlockedUser(ev.UserID, ev.UserName, page.PageID, reason, page.OwnerID)

	err := e.blocks.Create(ctx, blocked)
	if errors.Is(err, repository.ErrAlreadyBlocked) {
		log.Debug().
			Str(constants.LogFieldPageID, page.PageID).
			Str("user_id", ev.UserID).
			Msg("User already blocked")
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to block user: %w", err)
	}

	return false, nil
}

func (e *Evaluator) writeLog(ctx context.Context, entry *models.ActionLog) error {
	if entry.Status == models.LogStatusError {
		log.Warn().
			Str(constants.LogFieldPageID, entry.PageID).
			Str("type", string(entry.Type)).
			Str("error", entry.ErrorMessage).
			Msg("Moderation action failed")
	}

	if err := e.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write %s log: %w", entry.Type, err)
	}
	return nil
}
