// Package service provides the business logic behind the admin API and the
// webhook pipeline. Services orchestrate repositories, enforce page ownership
// and keep page access tokens encrypted at rest.
//
// This file implements the page service, which connects pages, manages their
// moderation settings and banned words, and resolves moderated pages for the
// webhook dispatcher.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/yasinhessnawi1/pageguard/internal/config"
	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// PageService handles connected page operations.
// Access tokens are encrypted before they reach the repository and are only
// decrypted for Graph API calls.
type PageService struct {
	pages    repository.PageRepository
	tokenKey []byte
	defaults models.PageSettings

	// lookups collapses concurrent webhook lookups of the same page
	lookups singleflight.Group
}

// NewPageService creates a new PageService.
//
// Parameters:
//   - pages: Repository for connected pages and their banned words
//   - tokenKey: 32-byte AES key used to encrypt page access tokens
//   - defaults: Moderation settings applied to newly connected pages
//
// Returns:
//   - A new PageService instance
func NewPageService(pages repository.PageRepository, tokenKey []byte, defaults models.PageSettings) *PageService {
	return &PageService{
		pages:    pages,
		tokenKey: tokenKey,
		defaults: defaults,
	}
}

// DefaultPageSettings converts the configured page defaults into settings
func DefaultPageSettings(cfg config.PageDefaultsSettings) models.PageSettings {
	autoDelete := constants.DefaultAutoDeleteBadComment
	if cfg.AutoDeleteBadComments != nil {
		autoDelete = *cfg.AutoDeleteBadComments
	}

	return models.PageSettings{
		WelcomeMessage:        cfg.WelcomeMessage,
		AutoReplyMessage:      cfg.AutoReplyMessage,
		CommentAutoReply:      cfg.CommentAutoReply,
		BannedWords:           []string{},
		AutoDeleteBadComments: autoDelete,
		WelcomeMode:           models.WelcomeMode(cfg.WelcomeMode),
	}
}

// Connect registers a page for a dashboard user.
//
// Parameters:
//   - ctx: Context for the operation
//   - ownerID: The dashboard user connecting the page
//   - req: The page id, name and access token
//
// Returns:
//   - The connected page, active with the bot disabled
//   - A duplicate error if the page is already connected
//
// The access token is stored encrypted and never returned.
func (s *PageService) Connect(ctx context.Context, ownerID int64, req *models.ConnectPageRequest) (*models.Page, error) {
	encrypted, err := utils.EncryptKey(req.AccessToken, s.tokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	page := models.NewPage(req.PageID, req.PageName, encrypted, ownerID, s.defaults)

	if err := s.pages.Create(ctx, page); err != nil {
		return nil, err
	}

	log.Info().
		Str(constants.LogFieldPageID, page.PageID).
		Int64("owner_id", ownerID).
		Str("access_token", utils.MaskToken(req.AccessToken)).
		Msg("Page connected by owner")

	return page, nil
}

// ListPages returns the pages connected by a dashboard user
func (s *PageService) ListPages(ctx context.Context, ownerID int64) ([]*models.Page, error) {
	pages, err := s.pages.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, nil
}

// GetPage retrieves a page owned by the caller.
//
// Parameters:
//   - ctx: Context for the operation
//   - ownerID: The dashboard user making the request
//   - pageID: The Facebook page id
//
// Returns:
//   - The page, with its access token still encrypted
//   - A not found error if the page does not exist or belongs to someone else
//
// Pages of other owners are reported as missing so their existence is not revealed.
func (s *PageService) GetPage(ctx context.Context, ownerID int64, pageID string) (*models.Page, error) {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}

	if page.OwnerID != ownerID {
		log.Warn().
			Str(constants.LogFieldPageID, pageID).
			Int64("owner_id", ownerID).
			Msg("Page requested by a user who does not own it")
		return nil, utils.NewNotFoundError("Page", pageID)
	}

	return page, nil
}

// UpdateSettings applies a partial settings update to an owned page
func (s *PageService) UpdateSettings(ctx context.Context, ownerID int64, pageID string, req *models.UpdatePageSettingsRequest) (*models.Page, error) {
	page, err := s.GetPage(ctx, ownerID, pageID)
	if err != nil {
		return nil, err
	}

	req.Apply(&page.Settings)

	if err := s.pages.UpdateSettings(ctx, page); err != nil {
		return nil, err
	}

	log.Info().
		Str(constants.LogFieldPageID, pageID).
		Str("welcome_mode", string(page.Settings.WelcomeMode)).
		Bool("auto_delete", page.Settings.AutoDeleteBadComments).
		Msg("Page settings updated")

	return page, nil
}

// SetBotEnabled turns moderation on or off for an owned page
func (s *PageService) SetBotEnabled(ctx context.Context, ownerID int64, pageID string, enabled bool) (*models.Page, error) {
	page, err := s.GetPage(ctx, ownerID, pageID)
	if err != nil {
		return nil, err
	}

	if err := s.pages.SetBotEnabled(ctx, pageID, enabled); err != nil {
		return nil, err
	}

	page.BotEnabled = enabled
	return page, nil
}

// GetBannedWords returns the banned words of an owned page
func (s *PageService) GetBannedWords(ctx context.Context, ownerID int64, pageID string) ([]string, error) {
	if _, err := s.GetPage(ctx, ownerID, pageID); err != nil {
		return nil, err
	}
	return s.pages.GetBannedWords(ctx, pageID)
}

// AddBannedWords adds words to an owned page and returns the resulting list.
// Words are lowercased and trimmed; blanks and duplicates are dropped.
func (s *PageService) AddBannedWords(ctx context.Context, ownerID int64, pageID string, words []string) ([]string, error) {
	if _, err := s.GetPage(ctx, ownerID, pageID); err != nil {
		return nil, err
	}

	words = utils.NormalizeWords(words)
	if len(words) == 0 {
		return nil, utils.NewValidationError("words", "At least one non-blank word is required")
	}

	if err := s.pages.AddBannedWords(ctx, pageID, words); err != nil {
		return nil, err
	}

	log.Info().Str(constants.LogFieldPageID, pageID).Int("count", len(words)).Msg("Banned words added")

	return s.pages.GetBannedWords(ctx, pageID)
}

// RemoveBannedWords removes words from an owned page and returns the resulting list
func (s *PageService) RemoveBannedWords(ctx context.Context, ownerID int64, pageID string, words []string) ([]string, error) {
	if _, err := s.GetPage(ctx, ownerID, pageID); err != nil {
		return nil, err
	}

	if err := s.pages.RemoveBannedWords(ctx, pageID, utils.NormalizeWords(words)); err != nil {
		return nil, err
	}

	return s.pages.GetBannedWords(ctx, pageID)
}

// AccessToken returns the decrypted access token of an owned page
func (s *PageService) AccessToken(ctx context.Context, ownerID int64, pageID string) (string, error) {
	page, err := s.GetPage(ctx, ownerID, pageID)
	if err != nil {
		return "", err
	}
	return s.decryptToken(page)
}

// GetModeratedPage resolves a page whose events the bot should act on.
// The returned copy carries the decrypted access token. Inactive pages and
// pages with the bot disabled are reported as not found.
func (s *PageService) GetModeratedPage(ctx context.Context, pageID string) (*models.Page, error) {
	v, err, _ := s.lookups.Do(pageID, func() (interface{}, error) {
		page, err := s.pages.GetModerated(ctx, pageID)
		if err != nil {
			return nil, err
		}

		token, err := s.decryptToken(page)
		if err != nil {
			return nil, err
		}
		page.AccessToken = token
		return page, nil
	})
	if err != nil {
		return nil, err
	}

	shared := v.(*models.Page)
	page := *shared
	return &page, nil
}

// decryptToken decrypts the stored access token of a page
func (s *PageService) decryptToken(page *models.Page) (string, error) {
	token, err := utils.DecryptKey(page.AccessToken, s.tokenKey)
	if err != nil {
		log.Error().Err(err).Str(constants.LogFieldPageID, page.PageID).Msg("Failed to decrypt page access token")
		return "", fmt.Errorf("failed to decrypt access token of page %s: %w", page.PageID, err)
	}
	return token, nil
}
