package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
)

// Recorder writes audit entries and staff notifications. Both are
// best-effort: failures are logged and never returned to the caller.
type Recorder struct {
	audit      ports.AuditRepository
	notifier   ports.NotificationSink
	recipients []string
	logger     *slog.Logger
	now        func() time.Time
}

func NewRecorder(audit ports.AuditRepository, notifier ports.NotificationSink, recipients []string, logger *slog.Logger) *Recorder {
	return &Recorder{
		audit:      audit,
		notifier:   notifier,
		recipients: recipients,
		logger:     logger,
		now:        time.Now,
	}
}

func (r *Recorder) Audit(ctx context.Context, actor domain.Actor, action, entityType, entityID string, details map[string]any) {
	if r == nil || r.audit == nil {
		return
	}
	entry := &domain.AuditLogEntry{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  actor.IPAddress,
	}
	if err := r.audit.Append(ctx, entry); err != nil {
		r.logger.Error("failed to write audit log",
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err,
		)
	}
}

func (r *Recorder) Notify(ctx context.Context, kind, title, message string, data map[string]any) {
	if r == nil || r.notifier == nil {
		return
	}
	n := domain.Notification{
		Type:       kind,
		Title:      title,
		Message:    message,
		Recipients: r.recipients,
		Data:       data,
		CreatedAt:  r.now().UTC(),
	}
	if err := r.notifier.Notify(ctx, n); err != nil {
		r.logger.Error("failed to send notification", "type", kind, "error", err)
	}
}
