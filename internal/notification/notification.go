package notification

import (
	"context"
	"log/slog"
)

// Message describes a reset-code delivery.
type Message struct {
	To   string
	Code string
}

// Notifier delivers reset codes to users.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes deliveries to the
// logger. Used in dev mode when SMTP is not configured, and in tests.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("reset code issued", "to", message.To, "code", message.Code)
	return nil
}
