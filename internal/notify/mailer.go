package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/uptimed/internal/config/monitor"
	"github.com/NordCoder/uptimed/internal/domain/check"
)

var ErrNoRecipient = errors.New("empty alert destination")

// SMSGateway delivers alerts through an email-to-SMS gateway: the message is
// mailed to <phone>@<gateway domain>.
type SMSGateway struct {
	addr    string
	auth    smtp.Auth
	useTLS  bool
	timeout time.Duration
	from    string
	domain  string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	log  *zap.Logger
}

var _ check.Notifier = (*SMSGateway)(nil)

// NewSMSGateway builds the gateway notifier. A nil logger discards.
func NewSMSGateway(cfg config.SMTP, l *zap.Logger) *SMSGateway {
	if l == nil {
		l = zap.NewNop()
	}
	var auth smtp.Auth
	if cfg.User != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, host(cfg.Addr))
	}
	return &SMSGateway{
		addr:    cfg.Addr,
		auth:    auth,
		useTLS:  cfg.UseTLS,
		timeout: cfg.Timeout,
		from:    cfg.From,
		domain:  strings.TrimPrefix(cfg.GatewayDomain, "@"),
		send:    smtp.SendMail,
		log:     l.With(zap.String("component", "notify.sms_gateway")),
	}
}

func (m *SMSGateway) recipient(phone string) string {
	return phone + "@" + m.domain
}

func (m *SMSGateway) Send(ctx context.Context, to, message string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}
	rcpt := m.recipient(to)
	msg := []byte(
		"From: " + m.from + "\r\n" +
			"To: " + rcpt + "\r\n" +
			"Subject: uptimed alert\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"\r\n" + message + "\r\n")

	start := time.Now()
	log := m.log.With(
		zap.String("smtp_addr", m.addr),
		zap.Bool("tls", m.useTLS),
		zap.String("to", rcpt),
	)

	if m.useTLS {
		if err := m.sendTLS(ctx, rcpt, msg); err != nil {
			log.Error("sms gateway send failed", zap.Error(err))
			return err
		}
	} else if err := m.send(m.addr, m.auth, m.from, []string{rcpt}, msg); err != nil {
		log.Error("sms gateway send failed", zap.Error(err))
		return err
	}
	log.Debug("alert mailed", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (m *SMSGateway) sendTLS(ctx context.Context, rcpt string, msg []byte) error {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: m.timeout},
		Config:    &tls.Config{ServerName: host(m.addr), MinVersion: tls.VersionTLS12},
	}
	conn, err := dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, host(m.addr))
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Close() }()

	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(rcpt); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func host(addr string) string {
	if h, _, err := net.SplitHostPort(addr); err == nil {
		return h
	}
	return addr
}
