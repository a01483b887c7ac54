package chat

import (
	"context"

	"github.com/Abraxas-365/mosaic/pkg/fsx"
	"github.com/Abraxas-365/mosaic/pkg/notifx"
)

const resumeTemplate = "resume"

const resumeHTML = `<p>Hello,</p>
<p>Please find attached the resume of {{.Owner}} as requested.</p>
<p>Best regards,<br>{{.Sender}}</p>
`

const resumeText = `Hello,

Please find attached the resume of {{.Owner}} as requested.

Best regards,
{{.Sender}}
`

// ResumeConfig locates the resume and describes the email around it
type ResumeConfig struct {
	File           string // path under the document store root
	AttachmentName string
	Owner          string
	Sender         string // signature line
}

// ResumeMailer reads the resume from a document store and mails it as an
// attachment.
type ResumeMailer struct {
	files fsx.FileReader
	mail  *notifx.Client
	cfg   ResumeConfig
}

// NewResumeMailer registers the resume templates on mail.
func NewResumeMailer(files fsx.FileReader, mail *notifx.Client, cfg ResumeConfig) (*ResumeMailer, error) {
	if cfg.AttachmentName == "" {
		cfg.AttachmentName = "Resume.pdf"
	}
	if cfg.Sender == "" {
		cfg.Sender = "Mosaic (AI Assistant)"
	}
	if err := mail.RegisterTemplate(resumeTemplate, resumeHTML); err != nil {
		return nil, err
	}
	if err := mail.RegisterTextTemplate(resumeTemplate, resumeText); err != nil {
		return nil, err
	}
	return &ResumeMailer{files: files, mail: mail, cfg: cfg}, nil
}

// SendResume implements ResumeSender.
func (m *ResumeMailer) SendResume(ctx context.Context, to string) error {
	data, err := m.files.ReadFile(ctx, m.cfg.File)
	if err != nil {
		if fsx.IsNotFound(err) {
			return chatErrors.New(ErrResumeNotFound).WithDetail("file", m.cfg.File)
		}
		return err
	}

	msg := notifx.EmailMessage{
		To:      []string{to},
		Subject: "Resume of " + m.cfg.Owner,
		Attachments: []notifx.Attachment{{
			Filename:    m.cfg.AttachmentName,
			ContentType: fsx.DetectContentType(m.cfg.AttachmentName),
			Data:        data,
		}},
	}
	return m.mail.SendTemplatedEmail(ctx, resumeTemplate, map[string]string{
		"Owner":  m.cfg.Owner,
		"Sender": m.cfg.Sender,
	}, msg, notifx.WithTags(map[string]string{"tool": "email_resume"}))
}
