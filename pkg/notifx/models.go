package notifx

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	CC          []string     `json:"cc,omitempty"`
	BCC         []string     `json:"bcc,omitempty"`
	ReplyTo     string       `json:"reply_to,omitempty"`
	Subject     string       `json:"subject"`
	TextBody    string       `json:"text_body,omitempty"`
	HTMLBody    string       `json:"html_body,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Recipients returns every envelope recipient: To, CC and BCC.
func (m EmailMessage) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.CC)+len(m.BCC))
	out = append(out, m.To...)
	out = append(out, m.CC...)
	return append(out, m.BCC...)
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// SendOptions holds optional configuration for a send operation.
type SendOptions struct {
	Tags     map[string]string
	ConfigID string
}

// Option is a functional option for send operations.
type Option func(*SendOptions)

// WithTags adds metadata tags to the send operation.
func WithTags(tags map[string]string) Option {
	return func(o *SendOptions) {
		o.Tags = tags
	}
}

// WithConfigID sets a provider-specific configuration set identifier.
func WithConfigID(id string) Option {
	return func(o *SendOptions) {
		o.ConfigID = id
	}
}

// ApplySendOptions folds opts into a SendOptions value.
func ApplySendOptions(opts []Option) SendOptions {
	var so SendOptions
	for _, o := range opts {
		o(&so)
	}
	return so
}
