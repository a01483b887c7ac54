package notifxses

import (
	"context"

	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/Abraxas-365/mosaic/pkg/notifx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// API is the subset of *ses.Client used here
type API interface {
	SendRawEmail(ctx context.Context, in *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESProvider implements notifx.EmailSender using AWS SES raw messages,
// which is what carries attachments.
type SESProvider struct {
	client      API
	fromAddress string
}

// NewSESProvider creates a new SES email provider.
func NewSESProvider(client API, fromAddress string) *SESProvider {
	return &SESProvider{
		client:      client,
		fromAddress: fromAddress,
	}
}

// SendEmail sends a single email via SES.
func (p *SESProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	if msg.From == "" {
		msg.From = p.fromAddress
	}
	so := notifx.ApplySendOptions(opts)

	raw, err := notifx.BuildMIME(msg)
	if err != nil {
		return err
	}

	input := &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Destinations: msg.Recipients(),
	}
	if so.ConfigID != "" {
		input.ConfigurationSetName = aws.String(so.ConfigID)
	}
	for k, v := range so.Tags {
		input.Tags = append(input.Tags, types.MessageTag{Name: aws.String(k), Value: aws.String(v)})
	}

	out, err := p.client.SendRawEmail(ctx, input)
	if err != nil {
		return sesErrors.NewWithCause(ErrSendFailed, err).
			WithDetail("to", msg.To).
			WithDetail("subject", msg.Subject)
	}

	logx.WithFields(logx.Fields{
		"message_id":  aws.ToString(out.MessageId),
		"to":          msg.To,
		"attachments": len(msg.Attachments),
	}).Debug("notifx/ses: email sent")
	return nil
}
