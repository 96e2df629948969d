package notify

import (
	"context"
	"log/slog"
)

// Log writes messages to a logger instead of delivering them.
type Log struct {
	logger *slog.Logger
}

// NewLog uses slog.Default when logger is nil.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, text string) error {
	logger := l.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Notification", slog.String("message", text))
	return nil
}

func (l *Log) Close() error { return nil }
