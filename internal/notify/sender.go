package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes notifications to the structured log instead of a device.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("notifications")}
}

func (l *LogSender) Send(_ context.Context, msg Message) error {
	l.log.Info(msg.Title,
		zap.String("type", msg.Type),
		zap.String("body", msg.Body),
	)
	return nil
}
