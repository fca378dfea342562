package notify

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

// LogSink writes notifications to the structured log. It is used when no
// broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(_ context.Context, n domain.Notification) error {
	s.logger.Info("staff notification",
		"type", n.Type,
		"title", n.Title,
		"message", n.Message,
		"recipients", n.Recipients,
	)
	return nil
}
