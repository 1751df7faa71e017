package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// PageOwnership resolves a page on behalf of its owner
type PageOwnership interface {
	GetPage(ctx context.Context, ownerID int64, pageID string) (*models.Page, error)
}

// BlockService handles manual blocks and the blocked user listings of a page
type BlockService struct {
	pages  PageOwnership
	blocks repository.BlockedUserRepository
	logs   repository.ActionLogRepository
}

// NewBlockService creates a new BlockService
func NewBlockService(pages PageOwnership, blocks repository.BlockedUserRepository, logs repository.ActionLogRepository) *BlockService {
	return &BlockService{
		pages:  pages,
		blocks: blocks,
		logs:   logs,
	}
}

// Block blocks a user on an owned page. Blocking a user that is already
// actively blocked is a conflict.
func (s *BlockService) Block(ctx context.Context, ownerID int64, pageID string, req *models.BlockUserRequest) (*models.BlockedUser, error) {
	if _, err := s.pages.GetPage(ctx, ownerID, pageID); err != nil {
		return nil, err
	}

	blocked := models.NewBlockedUser(req.UserID, req.UserName, pageID, models.BlockReasonManual, ownerID)
	blocked.Notes = req.Notes

	if err := s.blocks.Create(ctx, blocked); err != nil {
		if errors.Is(err, repository.ErrAlreadyBlocked) {
			return nil, utils.NewConflictError(constants.MsgUserAlreadyBlocked)
		}
		return nil, err
	}

	entry := models.NewActionLog(pageID, req.UserID, req.UserName, req.Notes, models.UserBlockedMetadata{
		Reason: models.BlockReasonManual,
	})
	s.writeLog(ctx, entry)

	return blocked, nil
}

// Unblock lifts the active block of a user on an owned page and records a
// user_unblocked log entry.
func (s *BlockService) Unblock(ctx context.Context, ownerID int64, pageID, userID string) (*models.BlockedUser, error) {
	if _, err := s.pages.GetPage(ctx, ownerID, pageID); err != nil {
		return nil, err
	}

	blocked, err := s.blocks.Unblock(ctx, pageID, userID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, utils.New(utils.ErrNotFound, http.StatusNotFound, constants.MsgUserNotBlocked)
		}
		return nil, err
	}

	entry := models.NewActionLog(pageID, userID, blocked.UserName, "", models.UserUnblockedMetadata{
		BlockedUserID: blocked.ID,
		UnblockedBy:   ownerID,
	})
	s.writeLog(ctx, entry)

	return blocked, nil
}

// List returns a page of block records for an owned page
func (s *BlockService) List(ctx context.Context, ownerID int64, filter models.BlockedUserFilter) ([]*models.BlockedUser, int, error) {
	if _, err := s.pages.GetPage(ctx, ownerID, filter.PageID); err != nil {
		return nil, 0, err
	}

	blocked, total, err := s.blocks.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list blocked users: %w", err)
	}
	return blocked, total, nil
}

// Stats summarises the active blocks of an owned page
func (s *BlockService) Stats(ctx context.Context, ownerID int64, pageID string) (*models.BlockStats, error) {
	if _, err := s.pages.GetPage(ctx, ownerID, pageID); err != nil {
		return nil, err
	}
	return s.blocks.Stats(ctx, pageID)
}

// writeLog appends a log entry. The block change itself has already been
// stored, so a failure is only logged.
func (s *BlockService) writeLog(ctx context.Context, entry *models.ActionLog) {
	if err := s.logs.Create(ctx, entry); err != nil {
		log.Error().
			Err(err).
			Str(constants.LogFieldPageID, entry.PageID).
			Str("type", string(entry.Type)).
			Msg("Failed to write action log")
	}
}
