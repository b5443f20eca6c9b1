package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTP delivers messages through an authenticated SMTP relay.
type SMTP struct {
	host     string
	port     int
	username string
	password string
	from     string
	policy   mail.TLSPolicy
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSMTP creates an SMTP notifier from cfg.
func NewSMTP(cfg *Config, logger *slog.Logger) *SMTP {
	return &SMTP{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		policy:   cfg.tlsPolicy(),
		timeout:  cfg.TimeoutDuration(),
		logger:   logger,
	}
}

func (s *SMTP) Notify(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	client, err := mail.NewClient(s.host, s.options()...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.Error("smtp send failed", "kind", msg.Kind, "to", msg.To, "error", err)
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	s.logger.Info("message sent", "kind", msg.Kind, "to", msg.To)
	return nil
}

func (s *SMTP) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		m.AttachReadSeeker(
			a.Filename,
			bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(a.ContentType)),
		)
	}
	return m, nil
}

func (s *SMTP) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(s.policy),
		mail.WithTimeout(s.timeout),
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}
	return opts
}
