package notifications

import (
	"fmt"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends one plain-text email.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

type noopMailer struct{}

func (noopMailer) Send(to, subject, body string) error { return nil }

// NewMailer builds an SMTP mailer, or a no-op when SMTP is not configured so
// callers never have to branch on deployment shape.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if !cfg.Enabled() {
		return noopMailer{}
	}
	return &smtpMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient address required")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.DefaultFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
