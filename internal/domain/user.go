package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of user roles. Keeping it a two-variant enum with
// exhaustive switches removes the typo class of authorization bugs that
// free-form role strings invite.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole maps a stored role string onto the closed enum.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsAdmin reports whether the role carries moderation rights.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleStudent:
		return false
	default:
		return false
	}
}

// AuthStatus enumerates campus-identity review states.
type AuthStatus string

const (
	AuthStatusPending  AuthStatus = "PENDING"
	AuthStatusApproved AuthStatus = "APPROVED"
	AuthStatusRejected AuthStatus = "REJECTED"
)

// ParseAuthStatus maps a review decision string onto the closed enum.
func ParseAuthStatus(s string) (AuthStatus, error) {
	switch AuthStatus(s) {
	case AuthStatusPending:
		return AuthStatusPending, nil
	case AuthStatusApproved:
		return AuthStatusApproved, nil
	case AuthStatusRejected:
		return AuthStatusRejected, nil
	default:
		return "", fmt.Errorf("unknown auth status %q", s)
	}
}

// User is a registered forum member.
type User struct {
	ID            string
	Phone         string
	Nickname      string
	PasswordHash  string
	StudentID     string
	CampusCardURL string
	AuthStatus    AuthStatus
	Role          Role
	IsMuted       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
