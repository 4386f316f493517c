package events

import "time"

// EventType enumerates moderation audit event identifiers.
type EventType string

const (
	EventSessionsRevoked EventType = "sessions_revoked"
	EventPostRemoved     EventType = "post_removed"
	EventCommentRemoved  EventType = "comment_removed"
	EventUserMuted       EventType = "user_muted"
	EventRoleChanged     EventType = "role_changed"
)

// Event represents a moderation action emitted by services.
type Event struct {
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// SessionsRevokedPayload payload.
type SessionsRevokedPayload struct {
	RefreshTokensDropped int `json:"refresh_tokens_dropped"`
}

// UserMutedPayload payload.
type UserMutedPayload struct {
	Muted bool `json:"muted"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	OldRole string `json:"old_role"`
	NewRole string `json:"new_role"`
}

// NewSessionsRevoked builds the audit event for a full session revocation.
func NewSessionsRevoked(userID string, dropped int) Event {
	return Event{
		Type:      EventSessionsRevoked,
		SubjectID: userID,
		Timestamp: time.Now(),
		Payload:   SessionsRevokedPayload{RefreshTokensDropped: dropped},
	}
}

// NewPostRemoved builds the audit event for a moderation post removal.
func NewPostRemoved(postID, adminID string) Event {
	return Event{
		Type:      EventPostRemoved,
		SubjectID: postID,
		Timestamp: time.Now(),
		Payload:   map[string]string{"admin_id": adminID},
	}
}

// NewCommentRemoved builds the audit event for a moderation comment removal.
func NewCommentRemoved(commentID, adminID string) Event {
	return Event{
		Type:      EventCommentRemoved,
		SubjectID: commentID,
		Timestamp: time.Now(),
		Payload:   map[string]string{"admin_id": adminID},
	}
}

// NewUserMuted builds the audit event for a mute toggle.
func NewUserMuted(userID string, muted bool) Event {
	return Event{
		Type:      EventUserMuted,
		SubjectID: userID,
		Timestamp: time.Now(),
		Payload:   UserMutedPayload{Muted: muted},
	}
}

// NewRoleChanged builds the audit event for a role change.
func NewRoleChanged(userID, oldRole, newRole string) Event {
	return Event{
		Type:      EventRoleChanged,
		SubjectID: userID,
		Timestamp: time.Now(),
		Payload:   RoleChangedPayload{OldRole: oldRole, NewRole: newRole},
	}
}
