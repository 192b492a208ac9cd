package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/shashiranjanraj/shopfront/config"
)

// SMTP holds connection credentials.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
}

// SMTPFromConfig reads MAIL_HOST, MAIL_PORT, MAIL_USERNAME and MAIL_PASSWORD.
func SMTPFromConfig() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
	}
}

// SMTPMailer delivers over SMTP: implicit TLS on port 465, STARTTLS otherwise.
type SMTPMailer struct {
	cfg  SMTP
	from Sender
}

func NewSMTP(cfg SMTP, from Sender) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, from: from}
}

func (s *SMTPMailer) Send(ctx context.Context, m *Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	if s.cfg.Username == "" {
		return fmt.Errorf("mail: MAIL_USERNAME not configured")
	}

	raw := buildRaw(fmt.Sprintf("%s <%s>", s.from.Name, s.from.Address), m)
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	// net/smtp has no context support; run it aside and honour cancellation.
	done := make(chan error, 1)
	go func() {
		if s.cfg.Port == "465" {
			done <- s.sendTLS(addr, auth, m.Recipients(), raw)
			return
		}
		done <- smtp.SendMail(addr, auth, s.from.Address, m.Recipients(), raw)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("mail: smtp send: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: smtp send: %w", err)
		}
		return nil
	}
}

func (s *SMTPMailer) sendTLS(addr string, auth smtp.Auth, to []string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(s.from.Address); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

const boundary = "shopfront-alt-boundary"

// buildRaw renders headers and a multipart/alternative body when both
// text and HTML parts are present.
func buildRaw(from string, m *Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	if len(m.cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case m.html != "" && m.text != "":
		b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))
		writePart(&b, "text/plain", m.text)
		writePart(&b, "text/html", m.html)
		b.WriteString("--" + boundary + "--\r\n")
	case m.html != "":
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(m.html)
	default:
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(m.text)
	}
	return []byte(b.String())
}

func writePart(b *strings.Builder, contentType, body string) {
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n\r\n", contentType))
	b.WriteString(body)
	b.WriteString("\r\n")
}
