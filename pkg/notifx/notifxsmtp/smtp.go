package notifxsmtp

import (
	"context"
	"crypto/tls"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"

	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/Abraxas-365/mosaic/pkg/notifx"
)

// Config holds the relay settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPProvider implements notifx.EmailSender over an SMTP relay with STARTTLS.
type SMTPProvider struct {
	cfg       Config
	tlsConfig *tls.Config
}

// NewSMTPProvider creates a new SMTP email provider.
func NewSMTPProvider(cfg Config) *SMTPProvider {
	return &SMTPProvider{
		cfg:       cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}
}

// SendEmail dials the relay, upgrades to TLS when offered, authenticates when
// credentials are set, then delivers one message. The context deadline bounds
// the whole exchange.
func (p *SMTPProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage, _ ...notifx.Option) error {
	if msg.From == "" {
		msg.From = p.cfg.From
	}
	raw, err := notifx.BuildMIME(msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(p.cfg.Host, strconv.Itoa(p.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return smtpErrors.NewWithCause(ErrDial, err).WithDetail("addr", addr)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, p.cfg.Host)
	if err != nil {
		conn.Close()
		return smtpErrors.NewWithCause(ErrDial, err).WithDetail("addr", addr)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok && p.tlsConfig != nil {
		if err := c.StartTLS(p.tlsConfig); err != nil {
			return smtpErrors.NewWithCause(ErrDial, err).WithDetail("addr", addr)
		}
	}
	if p.cfg.Username != "" {
		auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return smtpErrors.NewWithCause(ErrAuth, err)
		}
	}

	if err := p.deliver(c, envelopeFrom(msg.From), msg.Recipients(), raw); err != nil {
		return smtpErrors.NewWithCause(ErrSendFailed, err).
			WithDetail("to", msg.To).
			WithDetail("subject", msg.Subject)
	}

	logx.WithFields(logx.Fields{
		"relay":       addr,
		"to":          msg.To,
		"attachments": len(msg.Attachments),
	}).Debug("notifx/smtp: email sent")
	return c.Quit()
}

func (p *SMTPProvider) deliver(c *smtp.Client, from string, to []string, raw []byte) error {
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// envelopeFrom strips a display name from a From header value.
func envelopeFrom(from string) string {
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Address
	}
	return from
}
