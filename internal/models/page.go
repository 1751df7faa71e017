// Package models defines the data structures shared by the repositories,
// services and handlers of the moderation bot.
package models

import (
	"strings"
	"time"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// WelcomeMode controls when the welcome message is sent to a Messenger user.
type WelcomeMode string

const (
	// WelcomeEveryMessage answers every inbound text message with the welcome message.
	WelcomeEveryMessage WelcomeMode = "every_message"

	// WelcomeFirstMessage only answers the first message of a conversation.
	WelcomeFirstMessage WelcomeMode = "first_message"
)

// Valid reports whether the mode is one of the known welcome modes.
func (m WelcomeMode) Valid() bool {
	return m == WelcomeEveryMessage || m == WelcomeFirstMessage
}

// PageSettings holds the moderation settings of a connected page.
type PageSettings struct {
	// WelcomeMessage is sent to users writing to the page. Empty disables it.
	WelcomeMessage string `json:"welcome_message"`

	// AutoReplyMessage is kept for the dashboard; the webhook pipeline does not send it.
	AutoReplyMessage string `json:"auto_reply_message"`

	// CommentAutoReply is posted under every clean comment. Empty disables it.
	CommentAutoReply string `json:"comment_auto_reply"`

	// BannedWords are matched as case-insensitive substrings of comment text.
	BannedWords []string `json:"banned_words"`

	// AutoDeleteBadComments deletes comments containing a banned word and blocks the author.
	AutoDeleteBadComments bool `json:"auto_delete_bad_comments"`

	// WelcomeMode selects whether the welcome message goes out on every message or the first only.
	WelcomeMode WelcomeMode `json:"welcome_mode"`
}

// Page represents a Facebook Page connected to the bot.
type Page struct {
	PageID      string       `json:"page_id" db:"page_id"`
	PageName    string       `json:"page_name" db:"page_name"`
	AccessToken string       `json:"-" db:"access_token"`
	OwnerID     int64        `json:"owner_id" db:"owner_id"`
	IsActive    bool         `json:"is_active" db:"is_active"`
	BotEnabled  bool         `json:"bot_enabled" db:"bot_enabled"`
	Settings    PageSettings `json:"settings"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// TableName returns the database table name for the Page model.
func (p *Page) TableName() string {
	return constants.TablePages
}

// NewPage creates a newly connected page. The page is active straight away
// while the bot stays disabled until the owner turns it on.
func NewPage(pageID, pageName, accessToken string, ownerID int64, defaults PageSettings) *Page {
	now := time.Now()
	settings := defaults
	settings.BannedWords = append([]string{}, defaults.BannedWords...)
	if !settings.WelcomeMode.Valid() {
		settings.WelcomeMode = WelcomeEveryMessage
	}

	return &Page{
		PageID:      pageID,
		PageName:    pageName,
		AccessToken: accessToken,
		OwnerID:     ownerID,
		IsActive:    true,
		BotEnabled:  false,
		Settings:    settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Moderated reports whether webhook events for this page may trigger bot actions.
func (p *Page) Moderated() bool {
	return p.IsActive && p.BotEnabled
}

// MatchBannedWord returns the first banned word contained in text, compared case-insensitively.
func (s *PageSettings) MatchBannedWord(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, word := range s.BannedWords {
		if word == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(word)) {
			return word, true
		}
	}
	return "", false
}

// ConnectPageRequest is the payload for connecting a page to the bot.
type ConnectPageRequest struct {
	PageID      string `json:"page_id" validate:"required,notblank,max=64"`
	PageName    string `json:"page_name" validate:"required,notblank,max=255"`
	AccessToken string `json:"access_token" validate:"required,notblank"`
}

// UpdatePageSettingsRequest is the payload for saving page settings.
// Nil fields are left unchanged.
type UpdatePageSettingsRequest struct {
	WelcomeMessage        *string      `json:"welcome_message" validate:"omitempty,max=2000"`
	AutoReplyMessage      *string      `json:"auto_reply_message" validate:"omitempty,max=2000"`
	CommentAutoReply      *string      `json:"comment_auto_reply" validate:"omitempty,max=2000"`
	AutoDeleteBadComments *bool        `json:"auto_delete_bad_comments"`
	WelcomeMode           *WelcomeMode `json:"welcome_mode" validate:"omitempty,oneof=every_message first_message"`
}

// Apply copies the non-nil fields of the request onto settings.
func (r *UpdatePageSettingsRequest) Apply(settings *PageSettings) {
	if r.WelcomeMessage != nil {
		settings.WelcomeMessage = *r.WelcomeMessage
	}
	if r.AutoReplyMessage != nil {
		settings.AutoReplyMessage = *r.AutoReplyMessage
	}
	if r.CommentAutoReply != nil {
		settings.CommentAutoReply = *r.CommentAutoReply
	}
	if r.AutoDeleteBadComments != nil {
		settings.AutoDeleteBadComments = *r.AutoDeleteBadComments
	}
	if r.WelcomeMode != nil {
		settings.WelcomeMode = *r.WelcomeMode
	}
}

// ToggleBotRequest is the payload for enabling or disabling the bot on a page.
type ToggleBotRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// BannedWordsRequest is the payload for adding or removing banned words.
type BannedWordsRequest struct {
	Words []string `json:"words" validate:"required,min=1,dive,notblank,singleline,max=100"`
}
