package dto

import (
	"time"

	"github.com/campuskit/forum-service/internal/service"
)

// CommentCreateRequest payload for comment creation.
type CommentCreateRequest struct {
	PostID   string  `json:"post_id"`
	ParentID *string `json:"parent_id,omitempty"`
	Content  string  `json:"content"`
}

// CommentItem is one comment with its direct replies.
type CommentItem struct {
	ID             string         `json:"id"`
	PostID         string         `json:"post_id"`
	UserID         string         `json:"user_id"`
	AuthorNickname string         `json:"author_nickname,omitempty"`
	Content        string         `json:"content"`
	LikeCount      int64          `json:"like_count"`
	IsLiked        bool           `json:"is_liked"`
	CreatedAt      time.Time      `json:"created_at"`
	Children       []*CommentItem `json:"children,omitempty"`
}

// NewCommentTree maps service comment nodes to the response shape.
func NewCommentTree(nodes []*service.CommentNode) []*CommentItem {
	items := make([]*CommentItem, 0, len(nodes))
	for _, node := range nodes {
		items = append(items, newCommentItem(node))
	}
	return items
}

func newCommentItem(node *service.CommentNode) *CommentItem {
	item := &CommentItem{
		ID:             node.Comment.ID,
		PostID:         node.Comment.PostID,
		UserID:         node.Comment.UserID,
		AuthorNickname: node.AuthorNickname,
		Content:        node.Comment.Content,
		LikeCount:      node.Comment.LikeCount,
		IsLiked:        node.IsLiked,
		CreatedAt:      node.Comment.CreatedAt,
	}
	for _, child := range node.Children {
		item.Children = append(item.Children, newCommentItem(child))
	}
	return item
}
