package notification

import (
	"context"

	"go.uber.org/zap"
)

// LoggingSender stands in for a real email/SMS provider client, logging
// the rendered notification instead of delivering it.
type LoggingSender struct {
	logger *zap.Logger
}

// NewLoggingSender builds a LoggingSender.
func NewLoggingSender(logger *zap.Logger) *LoggingSender {
	return &LoggingSender{logger: logger}
}

func (s *LoggingSender) Send(ctx context.Context, n *Notification) error {
	s.logger.Info("notification sent",
		zap.String("user_id", n.UserID), zap.String("channel", string(n.Channel)),
		zap.String("subject", n.Subject))
	return nil
}
