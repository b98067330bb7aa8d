package notify

import (
	"context"

	"timeTracker/internal/logger"

	"go.uber.org/zap"
)

// LogNotifier пишет письма в лог, используется в разработке
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, subject, message, from, to string) error {
	logger.Info("Notify: Письмо",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("message", message))
	return nil
}
