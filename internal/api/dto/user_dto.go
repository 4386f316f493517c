package dto

import (
	"time"

	"github.com/campuskit/forum-service/internal/domain"
)

// ProfileUpdateRequest payload for profile edits.
type ProfileUpdateRequest struct {
	Nickname      string `json:"nickname"`
	CampusCardURL string `json:"campus_card_url"`
}

// PasswordChangeRequest payload for password updates.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserInfo is a member record as exposed over the API.
type UserInfo struct {
	ID            string    `json:"id"`
	Phone         string    `json:"phone"`
	Nickname      string    `json:"nickname"`
	StudentID     string    `json:"student_id"`
	CampusCardURL string    `json:"campus_card_url,omitempty"`
	AuthStatus    string    `json:"auth_status"`
	Role          string    `json:"role"`
	IsMuted       bool      `json:"is_muted"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewUserInfo maps a user to its API shape.
func NewUserInfo(user *domain.User) UserInfo {
	return UserInfo{
		ID:            user.ID,
		Phone:         user.Phone,
		Nickname:      user.Nickname,
		StudentID:     user.StudentID,
		CampusCardURL: user.CampusCardURL,
		AuthStatus:    string(user.AuthStatus),
		Role:          string(user.Role),
		IsMuted:       user.IsMuted,
		CreatedAt:     user.CreatedAt,
	}
}

// NewUserInfoList maps a slice of users.
func NewUserInfoList(users []*domain.User) []UserInfo {
	infos := make([]UserInfo, 0, len(users))
	for _, user := range users {
		infos = append(infos, NewUserInfo(user))
	}
	return infos
}
