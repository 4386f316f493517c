package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/events"
)

// AuditService writes a structured log line for every moderation event,
// giving kicks, mutes, and removals a durable trail in the log stream.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to moderation events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionsRevoked, a.record)
	a.dispatcher.Subscribe(events.EventPostRemoved, a.record)
	a.dispatcher.Subscribe(events.EventCommentRemoved, a.record)
	a.dispatcher.Subscribe(events.EventUserMuted, a.record)
	a.dispatcher.Subscribe(events.EventRoleChanged, a.record)
}

func (a *AuditService) record(_ context.Context, event events.Event) error {
	a.logger.Info("moderation event",
		zap.String("type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	)
	return nil
}
