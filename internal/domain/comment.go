package domain

import "time"

// CommentStatus enumerates comment lifecycle states.
type CommentStatus string

const (
	CommentStatusNormal  CommentStatus = "normal"
	CommentStatusDeleted CommentStatus = "deleted"
)

// Comment is a reply attached to a post, optionally nested one level under a
// parent comment.
type Comment struct {
	ID        string
	PostID    string
	UserID    string
	ParentID  *string
	Content   string
	LikeCount int64
	Status    CommentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
