package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
)

// NATS publishes each message as the payload of a core NATS message.
type NATS struct {
	conn    *nats.Conn
	subject string
}

// NewNATS connects to url and publishes on subject.
func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("sheetwatch"),
		nats.Timeout(DefaultTimeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "connect to NATS").
			Fatal().
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS notifier connected", slog.String("url", url), slog.String("subject", subject))
	return &NATS{conn: conn, subject: subject}, nil
}

// Notify publishes text and waits for the server to acknowledge the flush.
func (n *NATS) Notify(ctx context.Context, text string) error {
	if err := n.conn.Publish(n.subject, []byte(text)); err != nil {
		return errors.NotifierError(err, "publish to NATS").
			WithContext("subject", n.subject).
			Build()
	}

	timeout := DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := n.conn.FlushTimeout(timeout); err != nil {
		return errors.NotifierError(err, "flush NATS connection").
			WithContext("subject", n.subject).
			Build()
	}
	return nil
}

// Close drains and closes the connection.
func (n *NATS) Close() error {
	return n.conn.Drain()
}
