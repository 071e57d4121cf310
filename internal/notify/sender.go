package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/config"
)

// Message is a rendered email ready for a Sender
type Message struct {
	ID      string
	From    string
	To      []string
	Subject string
	Body    string
}

// Sender delivers one message
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(ctx context.Context, msg *Message) error

func (f SenderFunc) Send(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// NewSender picks the sender for the configured protocol
func NewSender(cfg config.MailConfig, logger *zap.Logger) Sender {
	switch cfg.Protocol {
	case "dummy":
		return &DummySender{logger: logger}
	default:
		return &SMTPSender{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
}

// SMTPSender sends through an SMTP relay
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("invalid from address %q: %w", msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	if msg.ID != "" {
		m.SetMessageIDWithValue(msg.ID)
	}
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{
		mail.WithPort(s.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.Username),
			mail.WithPassword(s.Password),
		)
	}

	client, err := mail.NewClient(s.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", s.Host, err)
	}
	return nil
}

// DummySender only logs the message
type DummySender struct {
	logger *zap.Logger
}

func (s *DummySender) Send(_ context.Context, msg *Message) error {
	s.logger.Info("Dummy mail sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}
