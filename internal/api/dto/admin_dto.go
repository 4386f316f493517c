package dto

// AuthReviewRequest payload for registration review.
type AuthReviewRequest struct {
	UserID     string `json:"user_id"`
	AuthStatus string `json:"auth_status"`
}

// MuteRequest payload for mute toggles.
type MuteRequest struct {
	UserID  string `json:"user_id"`
	IsMuted bool   `json:"is_muted"`
}

// KickRequest payload for forced logout.
type KickRequest struct {
	UserID string `json:"user_id"`
}

// RoleChangeRequest payload for role changes.
type RoleChangeRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
