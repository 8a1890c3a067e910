package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends confirmations as plain-text mail.
type SMTPSender struct {
	cfg  SMTPConfig
	shop Shop
	addr string
	auth smtp.Auth

	// send is swapped in tests.
	send func(e *email.Email, addr string, a smtp.Auth) error
}

// NewSMTPSender creates a sender. Auth is only used when a username is set.
func NewSMTPSender(cfg SMTPConfig, shop Shop) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		cfg:  cfg,
		shop: shop,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth: auth,
		send: func(e *email.Email, addr string, a smtp.Auth) error {
			return e.Send(addr, a)
		},
	}
}

// Send renders and delivers msg to the customer.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.CustomerEmail == "" {
		return fmt.Errorf("order %s: missing customer email", msg.OrderNumber)
	}

	body, err := RenderBody(s.shop, msg)
	if err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.shop.Name, s.cfg.From)
	e.To = []string{msg.CustomerEmail}
	e.Subject = Subject(s.shop.Name, msg)
	e.Text = []byte(body)

	if err := s.send(e, s.addr, s.auth); err != nil {
		return fmt.Errorf("send mail for order %s: %w", msg.OrderNumber, err)
	}
	return nil
}
