package worker

import (
	"github.com/campuskit/forum-service/internal/service"
)

// StartAuditWorker registers moderation audit handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
