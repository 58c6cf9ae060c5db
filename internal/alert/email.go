package alert

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// EmailConfig describes the SMTP relay used for alert mails
type EmailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	To        []string
	TLSVerify bool
}

// EmailNotifier delivers alerts over SMTP with STARTTLS
type EmailNotifier struct {
	cfg    EmailConfig
	dialer mailSender
	logger *logrus.Logger
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailNotifier(cfg EmailConfig, logger *logrus.Logger) *EmailNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: !cfg.TLSVerify,
	}
	return &EmailNotifier{
		cfg:    cfg,
		dialer: d,
		logger: logger,
	}
}

func (en *EmailNotifier) buildMessage(subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", en.cfg.From)
	m.SetHeader("To", en.cfg.To...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// Notify sends the mail. gomail has no context support, so cancellation is
// honoured by abandoning the send goroutine.
func (en *EmailNotifier) Notify(ctx context.Context, subject, body string) error {
	if len(en.cfg.To) == 0 {
		return fmt.Errorf("email notifier has no recipients")
	}

	msg := en.buildMessage(subject, body)
	done := make(chan error, 1)
	go func() {
		done <- en.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email via %s:%d: %w", en.cfg.Host, en.cfg.Port, err)
		}
		en.logger.Infof("Alert mailed to %v", en.cfg.To)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("email send aborted: %w", ctx.Err())
	}
}
