package notifx_test

import (
	"context"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/Abraxas-365/mosaic/pkg/errx"
	"github.com/Abraxas-365/mosaic/pkg/notifx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []notifx.EmailMessage
}

func (r *recordingSender) SendEmail(_ context.Context, msg notifx.EmailMessage, _ ...notifx.Option) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestParseAddress(t *testing.T) {
	for _, ok := range []string{"a@b.com", " jane.doe+jobs@example.co.uk "} {
		_, err := notifx.ParseAddress(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "not-an-email", "a@b", "Jane <a@b.com>", "a@@b.com"} {
		_, err := notifx.ParseAddress(bad)
		assert.Error(t, err, bad)
	}
}

func TestClient_Validation(t *testing.T) {
	rec := &recordingSender{}
	c := notifx.NewClient(rec, "noreply@mosaic.dev")
	ctx := context.Background()

	err := c.SendEmail(ctx, notifx.EmailMessage{Subject: "hi"})
	var e *errx.Error
	require.True(t, errx.As(err, &e))
	assert.Equal(t, "no recipients", e.Details["reason"])

	err = c.SendEmail(ctx, notifx.EmailMessage{To: []string{"bogus"}, Subject: "hi"})
	assert.Error(t, err)

	require.NoError(t, c.SendEmail(ctx, notifx.EmailMessage{To: []string{"a@b.com"}, Subject: "hi", TextBody: "x"}))
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "noreply@mosaic.dev", rec.sent[0].From)

	assert.Error(t, notifx.NewClient(nil, "x@y.com").SendEmail(ctx, notifx.EmailMessage{}))
}

func TestClient_SendTemplatedEmail(t *testing.T) {
	rec := &recordingSender{}
	c := notifx.NewClient(rec, "noreply@mosaic.dev")
	require.NoError(t, c.RegisterTemplate("resume", "<p>Hello from {{.Owner}}</p>"))
	require.NoError(t, c.RegisterTextTemplate("resume", "Hello from {{.Owner}}"))

	err := c.SendTemplatedEmail(context.Background(), "resume", map[string]string{"Owner": "<Ada>"},
		notifx.EmailMessage{To: []string{"a@b.com"}, Subject: "Resume"})
	require.NoError(t, err)
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "<p>Hello from &lt;Ada&gt;</p>", rec.sent[0].HTMLBody)
	assert.Equal(t, "Hello from <Ada>", rec.sent[0].TextBody)

	err = c.SendTemplatedEmail(context.Background(), "missing", nil, notifx.EmailMessage{})
	assert.ErrorContains(t, err, "template not found")
}

func TestBuildMIME_WithAttachment(t *testing.T) {
	pdf := []byte(strings.Repeat("%PDF-binary\x00\x01", 20))
	raw, err := notifx.BuildMIME(notifx.EmailMessage{
		From:     notifx.FormatAddress("Mosaic", "noreply@mosaic.dev"),
		To:       []string{"a@b.com"},
		BCC:      []string{"hidden@b.com"},
		Subject:  "Resume of Ada Lovelace",
		TextBody: "plain body",
		HTMLBody: "<p>html body</p>",
		Attachments: []notifx.Attachment{
			{Filename: "Resume.pdf", ContentType: "application/pdf", Data: pdf},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hidden@b.com")

	m, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", m.Header.Get("To"))
	subject, err := new(mime.WordDecoder).DecodeHeader(m.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Resume of Ada Lovelace", subject)

	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(m.Body, params["boundary"])

	alt, err := mr.NextPart()
	require.NoError(t, err)
	altType, altParams, err := mime.ParseMediaType(alt.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", altType)

	ar := multipart.NewReader(alt, altParams["boundary"])
	var bodies []string
	for {
		p, err := ar.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(p)
		require.NoError(t, err)
		bodies = append(bodies, string(b))
	}
	assert.Equal(t, []string{"plain body", "<p>html body</p>"}, bodies)

	att, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "Resume.pdf", att.FileName())
	assert.Equal(t, "base64", att.Header.Get("Content-Transfer-Encoding"))
	encoded, err := io.ReadAll(att)
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, pdf, data)

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestBuildMIME_PlainOnly(t *testing.T) {
	raw, err := notifx.BuildMIME(notifx.EmailMessage{
		From: "noreply@mosaic.dev", To: []string{"a@b.com"}, Subject: "hi", TextBody: "hello",
	})
	require.NoError(t, err)

	m, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m.Header.Get("Content-Type"), "text/plain"))
	body, err := io.ReadAll(m.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}
