package domain

import "time"

// LikeEdge records that a user liked a subject (post or comment). The row's
// existence is the "liked" fact; uniqueness on (subject, user) is enforced by
// the store.
type LikeEdge struct {
	ID        string
	SubjectID string
	UserID    string
	CreatedAt time.Time
}
