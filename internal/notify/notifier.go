// Package notify composes case notifications and delivers them through a
// mail transport.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Message kinds, used as log and metric labels.
const (
	KindAdminNotification = "admin_notification"
	KindVerifiedReply     = "verified_reply"
)

// Attachment is a file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a plain-text mail addressed to a single recipient.
type Message struct {
	Kind        string
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Notifier delivers messages. Implementations return an error wrapping
// ErrDeliveryFailed when the transport rejects or cannot reach the recipient.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// New creates the Notifier selected by cfg.Transport.
func New(cfg *Config, logger *slog.Logger) (Notifier, error) {
	logger = logger.With("system", "notify", "transport", cfg.Transport)

	switch cfg.Transport {
	case TransportSMTP:
		return NewSMTP(cfg, logger), nil
	case TransportLog:
		return NewLog(logger), nil
	}
	return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
}

type logNotifier struct {
	logger *slog.Logger
}

// NewLog returns a Notifier that logs messages instead of sending them.
func NewLog(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (l *logNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	attrs := []any{
		"kind", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	}
	for _, a := range msg.Attachments {
		attrs = append(attrs, "attachment", fmt.Sprintf("%s (%s, %d bytes)", a.Filename, a.ContentType, len(a.Data)))
	}

	l.logger.Info("message delivered to log", attrs...)
	return nil
}
