// Package email sends plain-text notification mail.
package email

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"worklog/internal/platform/config"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type noopMailer struct {
	log *zap.Logger
}

func (m noopMailer) Send(_ context.Context, _, to, subject, _ string) error {
	m.log.Debug("email disabled, message dropped", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Dialer is the part of gomail.Dialer the mailer uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpMailer struct {
	dialer Dialer
}

// New returns an SMTP mailer, or a no-op one when email is disabled or no
// host is configured.
func New(cfg config.Config) Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return noopMailer{log: zap.L().Named("email")}
	}
	return NewWithDialer(gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword))
}

func NewWithDialer(d Dialer) Mailer {
	return &smtpMailer{dialer: d}
}

func (s *smtpMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(BuildMessage(from, to, subject, body))
}

func BuildMessage(from, to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}
