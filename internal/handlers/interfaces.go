// Package handlers provides HTTP request handlers for the PageGuard API.
package handlers

import (
	"context"

	"github.com/yasinhessnawi1/pageguard/internal/graph"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/webhook"
)

// WebhookDispatcher defines the webhook intake used by the webhook handler.
type WebhookDispatcher interface {
	// Verify answers the subscription handshake.
	//
	// Parameters:
	//   - mode: The hub.mode query parameter
	//   - token: The hub.verify_token query parameter
	//   - challenge: The hub.challenge query parameter
	//
	// Returns:
	//   - The challenge to echo back
	//   - An AuthorizationError if the handshake is rejected
	Verify(mode, token, challenge string) (string, error)

	// Authenticate checks the body signature of a delivery.
	Authenticate(body []byte, signature string) error

	// Dispatch records and processes one delivery.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - body: The raw request body
	//
	// Returns:
	//   - Counters for the processed delivery
	//   - An error only if the body could not be parsed
	Dispatch(ctx context.Context, body []byte) (*webhook.Result, error)
}

// PageServiceInterface defines methods required from the page service.
// This interface is used by the page handlers to manage connected pages
// without being tightly coupled to the implementation.
type PageServiceInterface interface {
	// Connect stores a new page for the owner with the configured default settings.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - ownerID: The ID of the authenticated owner
	//   - req: The page to connect
	//
	// Returns:
	//   - The connected page
	//   - A conflict error if the page is already connected
	Connect(ctx context.Context, ownerID int64, req *models.ConnectPageRequest) (*models.Page, error)

	// ListPages returns every page of the owner.
	ListPages(ctx context.Context, ownerID int64) ([]*models.Page, error)

	// GetPage returns one page of the owner.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - ownerID: The ID of the authenticated owner
	//   - pageID: The Facebook page ID
	//
	// Returns:
	//   - The page
	//   - A not found error if the page does not exist or belongs to another owner
	GetPage(ctx context.Context, ownerID int64, pageID string) (*models.Page, error)

	// UpdateSettings applies a partial settings update.
	UpdateSettings(ctx context.Context, ownerID int64, pageID string, req *models.UpdatePageSettingsRequest) (*models.Page, error)

	// SetBotEnabled switches moderation on or off for a page.
	SetBotEnabled(ctx context.Context, ownerID int64, pageID string, enabled bool) (*models.Page, error)

	// GetBannedWords returns the banned words of a page.
	GetBannedWords(ctx context.Context, ownerID int64, pageID string) ([]string, error)

	// AddBannedWords adds words to the banned word list and returns the new list.
	AddBannedWords(ctx context.Context, ownerID int64, pageID string, words []string) ([]string, error)

	// RemoveBannedWords removes words from the banned word list and returns the new list.
	RemoveBannedWords(ctx context.Context, ownerID int64, pageID string, words []string) ([]string, error)
}

// BlockServiceInterface defines methods required from the block service.
type BlockServiceInterface interface {
	// Block creates a manual block.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - ownerID: The ID of the authenticated owner
	//   - pageID: The Facebook page ID
	//   - req: The user to block
	//
	// Returns:
	//   - The created block
	//   - A conflict error if the user already has an active block
	Block(ctx context.Context, ownerID int64, pageID string, req *models.BlockUserRequest) (*models.BlockedUser, error)

	// Unblock deactivates the active block of a user.
	Unblock(ctx context.Context, ownerID int64, pageID, userID string) (*models.BlockedUser, error)

	// List returns a filtered window of block records and the total match count.
	List(ctx context.Context, ownerID int64, filter models.BlockedUserFilter) ([]*models.BlockedUser, int, error)

	// Stats counts active blocks per reason.
	Stats(ctx context.Context, ownerID int64, pageID string) (*models.BlockStats, error)
}

// LogServiceInterface defines methods required from the log service.
type LogServiceInterface interface {
	List(ctx context.Context, ownerID int64, filter models.ActionLogFilter) ([]*models.ActionLog, int, error)
	Stats(ctx context.Context, ownerID int64, pageID string) (*models.LogStats, error)
	Cleanup(ctx context.Context) (*models.CleanupResult, error)
}

// FacebookServiceInterface defines the Graph API read-through and manual messaging.
type FacebookServiceInterface interface {
	Posts(ctx context.Context, ownerID int64, pageID string, page graph.Pagination) (*graph.PostList, error)
	PostComments(ctx context.Context, ownerID int64, pageID, postID string, page graph.Pagination) (*graph.CommentList, error)
	Conversations(ctx context.Context, ownerID int64, pageID string, page graph.Pagination) (*graph.ConversationList, error)
	ConversationMessages(ctx context.Context, ownerID int64, pageID, conversationID string, page graph.Pagination) (*graph.MessageList, error)
	UserInfo(ctx context.Context, ownerID int64, pageID, userID string) (*graph.UserInfo, error)
	SendMessage(ctx context.Context, ownerID int64, pageID string, req *models.SendMessageRequest) (*graph.SendResult, error)
}
