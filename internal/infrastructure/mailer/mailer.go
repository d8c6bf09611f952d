// Package mailer provides outgoing email delivery.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	appnotification "github.com/recyclemart/backend/internal/application/notification"
	infraconfig "github.com/recyclemart/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var (
	_ appnotification.EmailSender = (*SMTPSender)(nil)
	_ appnotification.EmailSender = (*NoopSender)(nil)
)

// SMTPSender delivers mail over plain SMTP with optional auth
type SMTPSender struct {
	addr     string
	from     string
	auth     smtp.Auth
	logger   *zap.Logger
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTPSender from mail configuration
func NewSMTPSender(cfg *infraconfig.MailConfig, logger *zap.Logger) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	from := cfg.From
	if from == "" {
		from = "noreply@recyclemart.example"
	}
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from:     from,
		auth:     auth,
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

// Send delivers one plain-text email
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("mail recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	if err := s.sendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	s.logger.Debug("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// NoopSender swallows all mail. Used when no mail host is configured.
type NoopSender struct{}

// NewNoopSender creates a NoopSender
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send does nothing
func (s *NoopSender) Send(ctx context.Context, to, subject, body string) error {
	return nil
}

// NewFromConfig returns an SMTP sender when a host is configured, otherwise
// the no-op sender.
func NewFromConfig(cfg *infraconfig.MailConfig, logger *zap.Logger) appnotification.EmailSender {
	if cfg.Host == "" {
		return NewNoopSender()
	}
	return NewSMTPSender(cfg, logger)
}
