package gateways

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"review-service-server/config"
)

// SMTPEmailGateway sends review request emails through a configured SMTP
// relay.
type SMTPEmailGateway struct {
	dialer *gomail.Dialer
}

// NewSMTPEmailGateway creates the gateway from the loaded SMTP config
func NewSMTPEmailGateway(cfg config.SMTPConfig) *SMTPEmailGateway {
	return &SMTPEmailGateway{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers one email. The context deadline bounds the whole
// dial-and-send exchange; gomail has no context support, so the send runs in
// its own goroutine and the deadline wins the race.
func (g *SMTPEmailGateway) Send(ctx context.Context, to, from, subject, htmlBody, textBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	if textBody != "" {
		m.SetBody("text/plain", textBody)
		m.AddAlternative("text/html", htmlBody)
	} else {
		m.SetBody("text/html", htmlBody)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- g.dialer.DialAndSend(m)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("smtp send to %s failed: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s timed out: %w", to, ctx.Err())
	}
}
