package notifx

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

const base64LineLen = 76

// BuildMIME renders msg as an RFC 5322 message: multipart/mixed when there
// are attachments, multipart/alternative for the text and HTML bodies.
// BCC recipients are left out of the headers.
func BuildMIME(msg EmailMessage) ([]byte, error) {
	var buf bytes.Buffer

	header := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
		}
	}
	header("From", msg.From)
	header("To", strings.Join(msg.To, ", "))
	header("Cc", strings.Join(msg.CC, ", "))
	header("Reply-To", msg.ReplyTo)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", time.Now().UTC().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")

	if len(msg.Attachments) == 0 {
		if err := writeBody(&buf, msg); err != nil {
			return nil, notifxErrors.NewWithCause(ErrBuildMessage, err)
		}
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	header("Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))
	buf.WriteString("\r\n")

	var body bytes.Buffer
	if err := writeBody(&body, msg); err != nil {
		return nil, notifxErrors.NewWithCause(ErrBuildMessage, err)
	}
	bodyHeader, bodyContent := splitPart(body.Bytes())
	part, err := mw.CreatePart(bodyHeader)
	if err != nil {
		return nil, notifxErrors.NewWithCause(ErrBuildMessage, err)
	}
	if _, err := part.Write(bodyContent); err != nil {
		return nil, notifxErrors.NewWithCause(ErrBuildMessage, err)
	}

	for _, a := range msg.Attachments {
		if err := writeAttachment(mw, a); err != nil {
			return nil, notifxErrors.NewWithCause(ErrBuildMessage, err).WithDetail("attachment", a.Filename)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, notifxErrors.NewWithCause(ErrBuildMessage, err)
	}
	return buf.Bytes(), nil
}

// writeBody writes the body entity: its headers, a blank line, then content.
func writeBody(w *bytes.Buffer, msg EmailMessage) error {
	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		mw := multipart.NewWriter(w)
		fmt.Fprintf(w, "Content-Type: %s\r\n\r\n",
			mime.FormatMediaType("multipart/alternative", map[string]string{"boundary": mw.Boundary()}))
		if err := writeTextPart(mw, "text/plain", msg.TextBody); err != nil {
			return err
		}
		if err := writeTextPart(mw, "text/html", msg.HTMLBody); err != nil {
			return err
		}
		return mw.Close()
	case msg.HTMLBody != "":
		return writeSingle(w, "text/html", msg.HTMLBody)
	default:
		return writeSingle(w, "text/plain", msg.TextBody)
	}
}

func writeSingle(w *bytes.Buffer, contentType, content string) error {
	fmt.Fprintf(w, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	w.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
	qp := quotedprintable.NewWriter(w)
	if _, err := io.WriteString(qp, content); err != nil {
		return err
	}
	return qp.Close()
}

func writeTextPart(mw *multipart.Writer, contentType, content string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+"; charset=UTF-8")
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := io.WriteString(qp, content); err != nil {
		return err
	}
	return qp.Close()
}

func writeAttachment(mw *multipart.Writer, a Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", mime.FormatMediaType(contentType, map[string]string{"name": a.Filename}))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	h.Set("Content-Transfer-Encoding", "base64")
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(a.Data)
	for len(encoded) > base64LineLen {
		if _, err := io.WriteString(part, encoded[:base64LineLen]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[base64LineLen:]
	}
	_, err = io.WriteString(part, encoded+"\r\n")
	return err
}

// splitPart separates an entity rendered by writeBody into its headers and
// content so it can be nested inside another multipart writer.
func splitPart(entity []byte) (textproto.MIMEHeader, []byte) {
	h := textproto.MIMEHeader{}
	head, content, _ := bytes.Cut(entity, []byte("\r\n\r\n"))
	for _, line := range strings.Split(string(head), "\r\n") {
		if k, v, ok := strings.Cut(line, ": "); ok {
			h.Add(k, v)
		}
	}
	return h, content
}
