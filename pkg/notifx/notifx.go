package notifx

import (
	"context"
	"net/mail"
	"strings"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error
}

// Client validates messages and renders templates before handing them to a provider.
type Client struct {
	provider  EmailSender
	templates *TemplateRegistry
	from      string
}

// NewClient creates a new notification client. from is the default sender,
// used when a message leaves From empty.
func NewClient(provider EmailSender, from string) *Client {
	return &Client{
		provider:  provider,
		templates: NewTemplateRegistry(),
		from:      from,
	}
}

// FormatAddress renders a display name and address as a header value.
func FormatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}

// ParseAddress validates a single bare email address and returns it normalized.
func ParseAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return "", notifxErrors.NewWithMessage(ErrInvalidAddress, "Invalid email address: "+s).WithDetail("address", s)
	}
	return addr.Address, nil
}

// SendEmail validates msg and sends it through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error {
	if c.provider == nil {
		return notifxErrors.New(ErrNoProvider)
	}
	if msg.From == "" {
		msg.From = c.from
	}
	if err := validate(msg); err != nil {
		return err
	}
	return c.provider.SendEmail(ctx, msg, opts...)
}

// RegisterTemplate parses and stores a named HTML template for later use.
func (c *Client) RegisterTemplate(name, tmplString string) error {
	return c.templates.Register(name, tmplString)
}

// RegisterTextTemplate stores the plain-text alternative for a named template.
func (c *Client) RegisterTextTemplate(name, tmplString string) error {
	return c.templates.RegisterText(name, tmplString)
}

// SendTemplatedEmail renders a template and sends the resulting email. The
// plain-text part is rendered too when one is registered under the same name.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data interface{}, msg EmailMessage, opts ...Option) error {
	body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}
	msg.HTMLBody = body

	if c.templates.HasText(templateName) {
		text, err := c.templates.RenderText(templateName, data)
		if err != nil {
			return err
		}
		msg.TextBody = text
	}
	return c.SendEmail(ctx, msg, opts...)
}

func validate(msg EmailMessage) error {
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	if msg.From == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no sender")
	}
	for _, to := range msg.Recipients() {
		if _, err := ParseAddress(to); err != nil {
			return err
		}
	}
	for _, a := range msg.Attachments {
		if a.Filename == "" || len(a.Data) == 0 {
			return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty attachment")
		}
	}
	return nil
}
