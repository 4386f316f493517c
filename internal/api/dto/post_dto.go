package dto

import (
	"time"

	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/service"
)

// PostCreateRequest payload for post creation.
type PostCreateRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	CategoryID  string `json:"category_id"`
	ContactInfo string `json:"contact_info"`
}

// PostListItem is one row of a post listing.
type PostListItem struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	ContentSummary string    `json:"content_summary"`
	CategoryID     string    `json:"category_id"`
	AuthorID       string    `json:"author_id"`
	ViewCount      int64     `json:"view_count"`
	LikeCount      int64     `json:"like_count"`
	HotScore       float64   `json:"hot_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// PostDetailResponse is the full post view.
type PostDetailResponse struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	CategoryID     string         `json:"category_id"`
	CategoryName   string         `json:"category_name,omitempty"`
	AuthorID       string         `json:"author_id"`
	AuthorNickname string         `json:"author_nickname,omitempty"`
	ContactInfo    string         `json:"contact_info,omitempty"`
	ViewCount      int64          `json:"view_count"`
	LikeCount      int64          `json:"like_count"`
	HotScore       float64        `json:"hot_score"`
	IsLiked        bool           `json:"is_liked"`
	CreatedAt      time.Time      `json:"created_at"`
	Comments       []*CommentItem `json:"comments"`
}

// ToggleLikeResponse reports the resulting like state.
type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}

const summaryLimit = 100

// NewPostListItem maps a post to a listing row.
func NewPostListItem(post *domain.Post) PostListItem {
	summary := post.Content
	if runes := []rune(summary); len(runes) > summaryLimit {
		summary = string(runes[:summaryLimit])
	}
	return PostListItem{
		ID:             post.ID,
		Title:          post.Title,
		ContentSummary: summary,
		CategoryID:     post.CategoryID,
		AuthorID:       post.AuthorID,
		ViewCount:      post.ViewCount,
		LikeCount:      post.LikeCount,
		HotScore:       post.HotScore,
		CreatedAt:      post.CreatedAt,
	}
}

// NewPostList maps a slice of posts to listing rows.
func NewPostList(posts []*domain.Post) []PostListItem {
	items := make([]PostListItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, NewPostListItem(post))
	}
	return items
}

// NewPostDetail maps a service detail to the response shape.
func NewPostDetail(detail *service.PostDetail) PostDetailResponse {
	return PostDetailResponse{
		ID:             detail.Post.ID,
		Title:          detail.Post.Title,
		Content:        detail.Post.Content,
		CategoryID:     detail.Post.CategoryID,
		CategoryName:   detail.CategoryName,
		AuthorID:       detail.Post.AuthorID,
		AuthorNickname: detail.AuthorNickname,
		ContactInfo:    detail.Post.ContactInfo,
		ViewCount:      detail.ViewCount,
		LikeCount:      detail.Post.LikeCount,
		HotScore:       detail.HotScore,
		IsLiked:        detail.IsLiked,
		CreatedAt:      detail.Post.CreatedAt,
		Comments:       NewCommentTree(detail.Comments),
	}
}
