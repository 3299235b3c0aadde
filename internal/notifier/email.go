package notifier

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
)

type emailSender struct {
	cfg    config.EmailConfig
	logger logger.Logger
}

// NewEmailSender delivers messages over SMTP with STARTTLS
func NewEmailSender(cfg config.EmailConfig, log logger.Logger) Sender {
	return &emailSender{cfg: cfg, logger: log}
}

func (s *emailSender) Notify(ctx context.Context, msg Message) error {
	if s.cfg.Sender == "" || s.cfg.Password == "" {
		return fmt.Errorf("%w: email sender credentials not configured", ErrDelivery)
	}

	m, err := s.buildMsg(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Sender),
		mail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("%w: create smtp client: %w", ErrDelivery, err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: send email to %s: %w", ErrDelivery, msg.Recipient, err)
	}

	s.logger.Info(ctx, "Email sent to %s", msg.Recipient)
	return nil
}

func (s *emailSender) buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.Sender); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.Recipient); err != nil {
		return nil, fmt.Errorf("set recipient %q: %w", msg.Recipient, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	for _, path := range msg.Attachments {
		m.AttachFile(path)
	}
	return m, nil
}
