package models

// WebhookObjectPage is the object value of deliveries about Facebook Pages.
const WebhookObjectPage = "page"

// FeedField is the change field carrying page feed events.
const FeedField = "feed"

// Feed item kinds handled by the bot.
const (
	FeedItemComment  = "comment"
	FeedItemReaction = "reaction"
)

// Feed verbs. Removals are not moderated.
const (
	FeedVerbAdd    = "add"
	FeedVerbEdited = "edited"
	FeedVerbRemove = "remove"
)

// ReactionAngry is the reaction type that gets a user blocked.
const ReactionAngry = "angry"

// WebhookPayload is the body of a webhook delivery.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry groups the events of a single page.
type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging,omitempty"`
	Changes   []FeedChange     `json:"changes,omitempty"`
}

// Party identifies a Facebook user or page.
type Party struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// MessagingEvent is a Messenger event. Exactly one of Message or Postback is
// set for the events the bot handles; deliveries and reads carry neither.
type MessagingEvent struct {
	Sender    Party           `json:"sender"`
	Recipient Party           `json:"recipient"`
	Timestamp int64           `json:"timestamp"`
	Message   *InboundMessage `json:"message,omitempty"`
	Postback  *Postback       `json:"postback,omitempty"`
}

// InboundMessage is the message part of a messaging event.
type InboundMessage struct {
	MID    string `json:"mid"`
	Text   string `json:"text,omitempty"`
	IsEcho bool   `json:"is_echo,omitempty"`
}

// Postback is sent when a user taps a button.
type Postback struct {
	MID     string `json:"mid,omitempty"`
	Title   string `json:"title,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// FeedChange is one entry of a page's changes array.
type FeedChange struct {
	Field string    `json:"field"`
	Value FeedValue `json:"value"`
}

// FeedValue describes a comment or reaction on the page feed.
type FeedValue struct {
	Item         string `json:"item"`
	Verb         string `json:"verb,omitempty"`
	CommentID    string `json:"comment_id,omitempty"`
	PostID       string `json:"post_id,omitempty"`
	ParentID     string `json:"parent_id,omitempty"`
	Message      string `json:"message,omitempty"`
	From         Party  `json:"from"`
	ReactionType string `json:"reaction_type,omitempty"`
	CreatedTime  int64  `json:"created_time,omitempty"`
}
