package models

import (
	"time"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
	CommentStatusDeleted  CommentStatus = "deleted"
)

// Comment is a comment posted on one of the page's posts.
type Comment struct {
	ID        int64         `json:"id" db:"id"`
	CommentID string        `json:"comment_id" db:"comment_id"`
	PageID    string        `json:"page_id" db:"page_id"`
	PostID    string        `json:"post_id" db:"post_id"`
	UserID    string        `json:"user_id" db:"user_id"`
	UserName  string        `json:"user_name" db:"user_name"`
	Content   string        `json:"content" db:"content"`
	Status    CommentStatus `json:"status" db:"status"`
	Reply     string        `json:"reply,omitempty" db:"reply"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the database table name for the Comment model.
func (c *Comment) TableName() string {
	return constants.TableComments
}

// NewComment creates a pending comment record.
func NewComment(commentID, pageID, postID, userID, userName, content string) *Comment {
	now := time.Now()
	return &Comment{
		CommentID: commentID,
		PageID:    pageID,
		PostID:    postID,
		UserID:    userID,
		UserName:  userName,
		Content:   content,
		Status:    CommentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
