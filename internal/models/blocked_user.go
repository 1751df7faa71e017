package models

import (
	"time"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// BlockReason enumerates why a user was blocked on a page.
type BlockReason string

const (
	BlockReasonAngryReaction BlockReason = "angry_reaction"
	BlockReasonBadComment    BlockReason = "bad_comment"
	BlockReasonManual        BlockReason = "manual_block"
)

// Valid reports whether the reason is a known block reason.
func (r BlockReason) Valid() bool {
	switch r {
	case BlockReasonAngryReaction, BlockReasonBadComment, BlockReasonManual:
		return true
	}
	return false
}

// BlockedUser is a block record for a (user, page) pair.
// Unblocking sets IsActive to false; records are never deleted.
type BlockedUser struct {
	ID          int64       `json:"id" db:"blocked_user_id"`
	UserID      string      `json:"user_id" db:"user_id"`
	UserName    string      `json:"user_name" db:"user_name"`
	PageID      string      `json:"page_id" db:"page_id"`
	Reason      BlockReason `json:"reason" db:"reason"`
	BlockedBy   int64       `json:"blocked_by" db:"blocked_by"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	BlockedAt   time.Time   `json:"blocked_at" db:"blocked_at"`
	UnblockedAt *time.Time  `json:"unblocked_at,omitempty" db:"unblocked_at"`
	Notes       string      `json:"notes,omitempty" db:"notes"`
}

// TableName returns the database table name for the BlockedUser model.
func (b *BlockedUser) TableName() string {
	return constants.TableBlockedUsers
}

// NewBlockedUser creates an active block record.
func NewBlockedUser(userID, userName, pageID string, reason BlockReason, blockedBy int64) *BlockedUser {
	return &BlockedUser{
		UserID:    userID,
		UserName:  userName,
		PageID:    pageID,
		Reason:    reason,
		BlockedBy: blockedBy,
		IsActive:  true,
		BlockedAt: time.Now(),
	}
}

// Unblock marks the record as lifted at the given time.
func (b *BlockedUser) Unblock(at time.Time) {
	b.IsActive = false
	b.UnblockedAt = &at
}

// BlockedUserFilter narrows a blocked user listing.
type BlockedUserFilter struct {
	PageID string
	Reason BlockReason
	Search string
	Active *bool
	Limit  int
	Offset int
}

// BlockStats summarises the active blocks of a page.
type BlockStats struct {
	Total    int                 `json:"total"`
	ByReason map[BlockReason]int `json:"by_reason"`
}

// BlockUserRequest is the payload for a manual block issued from the dashboard.
type BlockUserRequest struct {
	UserID   string `json:"user_id" validate:"required,notblank,max=64"`
	UserName string `json:"user_name" validate:"omitempty,max=255"`
	Notes    string `json:"notes" validate:"omitempty,max=1000"`
}
