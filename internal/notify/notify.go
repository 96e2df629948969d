// Package notify delivers change messages over the configured transport.
package notify

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sheetwatch/internal/config"
)

// DefaultTimeout bounds every delivery attempt.
const DefaultTimeout = 10 * time.Second

// Notifier delivers a formatted text message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
	Close() error
}

// New builds the notifier selected by cfg.Notifier.
func New(cfg *config.Config) (Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierTelegram:
		return NewTelegram(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID), nil
	case config.NotifierNATS:
		return NewNATS(cfg.NATSURL, cfg.NATSSubject)
	case config.NotifierLog:
		return NewLog(nil), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}
