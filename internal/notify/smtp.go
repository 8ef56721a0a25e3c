package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

const defaultSMTPPort = 587

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers through an SMTP relay with PLAIN authentication.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string

	sendMail sendMailFunc
	now      func() time.Time
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	if port <= 0 {
		port = defaultSMTPPort
	}
	return &SMTPSender{
		Host:     strings.TrimSpace(host),
		Port:     port,
		Username: strings.TrimSpace(username),
		Password: password,
		sendMail: smtp.SendMail,
		now:      time.Now,
	}
}

func (s *SMTPSender) Name() string {
	return "smtp"
}

// Send ignores ctx deadlines inside the SMTP exchange; it only refuses to start once ctx is done.
func (s *SMTPSender) Send(ctx context.Context, from string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	body, err := buildMIME(from, msg, s.now())
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	if err := s.sendMail(addr, auth, from, []string{msg.To}, body); err != nil {
		return fmt.Errorf("send via %s: %w", addr, err)
	}
	return nil
}

func buildMIME(from string, msg Message, date time.Time) ([]byte, error) {
	var buf bytes.Buffer
	header := func(key, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}

	header("From", from)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")

	if msg.HTML == "" || msg.Text == "" {
		contentType, content := "text/plain; charset=utf-8", msg.Text
		if msg.HTML != "" {
			contentType, content = "text/html; charset=utf-8", msg.HTML
		}
		header("Content-Type", contentType)
		buf.WriteString("\r\n")
		buf.WriteString(content)
		return buf.Bytes(), nil
	}

	var parts bytes.Buffer
	writer := multipart.NewWriter(&parts)
	header("Content-Type", "multipart/alternative; boundary="+writer.Boundary())
	buf.WriteString("\r\n")

	for _, part := range []struct{ contentType, content string }{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	} {
		w, err := writer.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, fmt.Errorf("create mime part: %w", err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("write mime part: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close mime writer: %w", err)
	}

	buf.Write(parts.Bytes())
	return buf.Bytes(), nil
}
