// Package mailer delivers magic-link sign-in emails over SMTP, optionally
// through an asynq queue, or to the log when no SMTP host is configured.
package mailer

import (
	"context"
	"fmt"
	"log"
	"net/mail"

	"memoryvault/config"
)

// Sender delivers a sign-in link.
type Sender interface {
	SendMagicLink(ctx context.Context, to, link string) error
}

// New picks the sender for cfg: log-only without an SMTP host, SMTP otherwise,
// wrapped in a queue when REDIS_URL is set. The returned close func releases the queue client.
func New(cfg *config.Config) (Sender, func() error, error) {
	noop := func() error { return nil }

	if cfg.EmailServerHost == "" {
		log.Println("EMAIL_SERVER_HOST not set, magic links will be written to the log")
		return LogSender{}, noop, nil
	}

	smtp, err := NewSMTPSender(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.RedisURL == "" {
		return smtp, noop, nil
	}

	queue, err := NewQueueSender(cfg.RedisURL, cfg.MailQueueMaxRetry)
	if err != nil {
		return nil, nil, err
	}
	return queue, queue.Close, nil
}

// LogSender writes links to the process log. Development only.
type LogSender struct{}

func (LogSender) SendMagicLink(ctx context.Context, to, link string) error {
	log.Printf("Magic link for %s: %s", to, link)
	return nil
}

func parseFrom(from, user string) (string, error) {
	if from == "" {
		from = user
	}
	if from == "" {
		return "", fmt.Errorf("EMAIL_FROM or EMAIL_SERVER_USER is required to send mail")
	}
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "", fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	return addr.String(), nil
}
