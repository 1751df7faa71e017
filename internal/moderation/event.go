package moderation

import (
	"fmt"

	"github.com/yasinhessnawi1/pageguard/internal/models"
)

// EventKind classifies a webhook event
type EventKind string

const (
	KindMessage  EventKind = "message"
	KindPostback EventKind = "postback"
	KindComment  EventKind = "comment"
	KindReaction EventKind = "reaction"
	KindOther    EventKind = "other"
)

// Event is one messaging event or feed change, flattened for the policy
type Event struct {
	Kind         EventKind
	PageID       string
	UserID       string
	UserName     string
	Text         string
	MessageID    string
	Echo         bool
	CommentID    string
	PostID       string
	Verb         string
	ReactionType string
}

// FromMessaging converts a Messenger event delivered for a page
func FromMessaging(pageID string, ev models.MessagingEvent) Event {
	event := Event{
		Kind:     KindOther,
		PageID:   pageID,
		UserID:   ev.Sender.ID,
		UserName: ev.Sender.Name,
	}

	switch {
	case ev.Message != nil:
		event.Kind = KindMessage
		event.MessageID = ev.Message.MID
		event.Text = ev.Message.Text
		event.Echo = ev.Message.IsEcho
	case ev.Postback != nil:
		event.Kind = KindPostback
		event.MessageID = ev.Postback.MID
		event.Text = ev.Postback.Payload
	}

	return event
}

// FromFeedChange converts a feed change delivered for a page
func FromFeedChange(pageID string, change models.FeedChange) Event {
	value := change.Value
	event := Event{
		Kind:         KindOther,
		PageID:       pageID,
		UserID:       value.From.ID,
		UserName:     value.From.Name,
		Text:         value.Message,
		CommentID:    value.CommentID,
		PostID:       value.PostID,
		Verb:         value.Verb,
		ReactionType: value.ReactionType,
	}

	switch value.Item {
	case models.FeedItemComment:
		event.Kind = KindComment
	case models.FeedItemReaction:
		event.Kind = KindReaction
	}

	return event
}

// IsMessaging reports whether the event came from the messaging array
func (e Event) IsMessaging() bool {
	return e.Kind == KindMessage || e.Kind == KindPostback
}

// Key identifies the event across redeliveries. It is empty when the
// event carries nothing stable enough to identify it.
func (e Event) Key() string {
	switch e.Kind {
	case KindMessage, KindPostback:
		if e.MessageID == "" {
			return ""
		}
		return fmt.Sprintf("%s:%s", e.Kind, e.MessageID)
	case KindComment:
		if e.CommentID == "" {
			return ""
		}
		return fmt.Sprintf("comment:%s:%s", e.CommentID, e.Verb)
	case KindReaction:
		if e.PostID == "" || e.UserID == "" {
			return ""
		}
		return fmt.Sprintf("reaction:%s:%s:%s:%s", e.PostID, e.UserID, e.ReactionType, e.Verb)
	}
	return ""
}
