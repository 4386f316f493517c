package domain

import "time"

// PostStatus enumerates post lifecycle states.
type PostStatus string

const (
	PostStatusNormal  PostStatus = "normal"
	PostStatusDeleted PostStatus = "deleted"
)

// Post is the aggregate for forum threads.
type Post struct {
	ID          string
	Title       string
	Content     string
	CategoryID  string
	AuthorID    string
	ContactInfo string
	ViewCount   int64
	LikeCount   int64
	HotScore    float64
	Status      PostStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HotScore blends durable view and like counts into the ranking metric.
// Recomputed in full whenever either operand changes so the stored value
// never drifts from its inputs.
func ComputeHotScore(viewCount, likeCount int64) float64 {
	return 0.3*float64(viewCount) + 0.7*float64(likeCount)
}
