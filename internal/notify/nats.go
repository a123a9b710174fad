package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSNotifier publishes notifications to a NATS subject for a delivery
// worker to pick up.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewNATSNotifier(url string, subject string, logger *slog.Logger) (*NATSNotifier, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS notifier initialized", "url", url, "subject", subject)

	return &NATSNotifier{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *NATSNotifier) Notify(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal notification", "error", err)
		return err
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish notification", "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "notification published", "subject", p.subject, "recipient", n.Recipient)
	return nil
}

func (p *NATSNotifier) Close() error {
	p.conn.Close()
	return nil
}
