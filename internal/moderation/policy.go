// Package moderation decides and carries out what the bot does for a single
// webhook event on a moderated page.
//
// Decide holds the rules and has no side effects. Evaluator.Handle runs the
// decision: it calls the Graph API, writes block records and appends exactly
// one action log entry per external action, whether the call succeeded or not.
package moderation

import (
	"github.com/yasinhessnawi1/pageguard/internal/models"
)

// Action is what the bot does in response to an event
type Action string

const (
	// ActionIgnore skips events the bot never acts on, such as echoes and removals
	ActionIgnore Action = "ignore"
	// ActionDrop discards a message from a blocked sender
	ActionDrop Action = "drop"
	// ActionNone accepts the event without acting on it
	ActionNone Action = "none"

	ActionBlockUser     Action = "block_user"
	ActionDeleteComment Action = "delete_comment"
	ActionReplyComment  Action = "reply_comment"
	ActionWelcome       Action = "welcome"
)

// Reason given on comment_deleted log entries
const reasonBadWords = "bad_words"

// Decision is the outcome of the policy for one event
type Decision struct {
	Action      Action
	Reason      string
	Text        string             // Reply or welcome text to send
	MatchedWord string             // Banned word found in a comment
	BlockReason models.BlockReason // Set for actions that block the author

	// FirstMessageOnly limits a welcome to conversations seen for the first time
	FirstMessageOnly bool
}

// Decide applies the moderation rules to an event of a moderated page.
// blocked tells whether the author has an active block on the page; it is
// only consulted for messaging events.
func Decide(ev Event, page *models.Page, blocked bool) Decision {
	if ev.Echo {
		return Decision{Action: ActionIgnore, Reason: "echo of a page message"}
	}
	if ev.UserID == "" {
		return Decision{Action: ActionIgnore, Reason: "event has no author"}
	}
	if ev.UserID == page.PageID {
		return Decision{Action: ActionIgnore, Reason: "authored by the page"}
	}
	if ev.Verb == models.FeedVerbRemove {
		return Decision{Action: ActionIgnore, Reason: "removal"}
	}

	settings := page.Settings

	switch ev.Kind {
	case KindMessage, KindPostback:
		if blocked {
			return Decision{Action: ActionDrop, Reason: "sender is blocked"}
		}
		if ev.Kind == KindPostback {
			return Decision{Action: ActionNone, Reason: "postback"}
		}
		if ev.Text == "" {
			return Decision{Action: ActionNone, Reason: "message has no text"}
		}
		if settings.WelcomeMessage == "" {
			return Decision{Action: ActionNone, Reason: "no welcome message configured"}
		}
		return Decision{
			Action:           ActionWelcome,
			Text:             settings.WelcomeMessage,
			FirstMessageOnly: settings.WelcomeMode == models.WelcomeFirstMessage,
		}

	case KindReaction:
		if ev.ReactionType != models.ReactionAngry {
			return Decision{Action: ActionNone, Reason: "reaction is not angry"}
		}
		return Decision{
			Action:      ActionBlockUser,
			Reason:      "angry reaction",
			BlockReason: models.BlockReasonAngryReaction,
		}

	case KindComment:
		if word, ok := settings.MatchBannedWord(ev.Text); ok && settings.AutoDeleteBadComments {
			return Decision{
				Action:      ActionDeleteComment,
				Reason:      reasonBadWords,
				MatchedWord: word,
				BlockReason: models.BlockReasonBadComment,
			}
		}
		if settings.CommentAutoReply != "" {
			return Decision{Action: ActionReplyComment, Text: settings.CommentAutoReply}
		}
		return Decision{Action: ActionNone, Reason: "no comment action configured"}
	}

	return Decision{Action: ActionIgnore, Reason: "unsupported event"}
}
