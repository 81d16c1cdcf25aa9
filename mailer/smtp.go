package mailer

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"memoryvault/config"

	"gopkg.in/gomail.v2"
)

// SMTPSender sends mail through a gomail dialer.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	from, err := parseFrom(cfg.EmailFrom, cfg.EmailServerUser)
	if err != nil {
		return nil, err
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.EmailServerHost, cfg.EmailServerPort, cfg.EmailServerUser, cfg.EmailServerPassword),
		from:   from,
	}, nil
}

func (s *SMTPSender) SendMagicLink(ctx context.Context, to, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(buildMagicLinkMessage(s.from, to, link)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func buildMagicLinkMessage(from, to, link string) *gomail.Message {
	host := "MemoryVault"
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		host = u.Host
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Sign in to "+host)
	m.SetBody("text/plain", "Sign in to "+host+"\n\n"+link+"\n\nIf you did not request this email you can safely ignore it.\n")
	m.AddAlternative("text/html", `
		<div style="font-family: Georgia, serif; max-width: 480px; margin: auto; padding: 24px; border-radius: 12px; background-color: #fff5f7;">
			<h2 style="color: #be185d; text-align: center;">Sign in to `+html.EscapeString(host)+`</h2>
			<p style="text-align: center;"><a href="`+html.EscapeString(link)+`" style="display: inline-block; padding: 10px 20px; background-color: #db2777; color: #fff; text-decoration: none; border-radius: 6px;">Sign in</a></p>
			<p style="color: #6b7280; font-size: 12px;">If you did not request this email you can safely ignore it.</p>
		</div>
	`)
	return m
}
