package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/countryharvest/storefront-backend/pkg/config"
)

// smtpSender delivers mail through a plain SMTP relay. The standard
// library client is used directly; see DESIGN.md for the rationale.
type smtpSender struct {
	cfg config.SMTPConfig
}

// NewSender returns an SMTP-backed Sender, or a log-only sender when no
// relay is configured so development environments never block on mail.
func NewSender(cfg config.SMTPConfig, logger zerolog.Logger) Sender {
	if !cfg.Enabled() {
		logger.Warn().Msg("smtp relay not configured, emails will be logged only")
		return &logSender{logger: logger}
	}
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.DefaultFrom,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(s.cfg.Addr(), auth, s.cfg.DefaultFrom, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// logSender stands in for a relay in local development.
type logSender struct {
	logger zerolog.Logger
}

func (l *logSender) Send(ctx context.Context, to, subject, body string) error {
	l.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("email suppressed (no smtp relay)")
	return nil
}
