// Package mail sends transactional email through a pluggable Mailer.
//
// Build a message fluently and hand it to the configured driver:
//
//	msg := mail.To("user@example.com").
//	    Subject("Verify your email").
//	    Body("<p>Hello</p>").
//	    Text("Hello")
//	err := mailer.Send(ctx, msg)
package mail

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/shopfront/config"
)

var ErrNoRecipients = errors.New("mail: message has no recipients")

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, m *Message) error
}

// Message is a fluent builder for an email.
type Message struct {
	to      []string
	cc      []string
	subject string
	html    string
	text    string
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses}
}

// CC adds CC recipients.
func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

// Subject sets the email subject.
func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets the HTML body.
func (m *Message) Body(html string) *Message {
	m.html = html
	return m
}

// Text sets the plain-text alternative.
func (m *Message) Text(text string) *Message {
	m.text = text
	return m
}

func (m *Message) Recipients() []string { return append(append([]string(nil), m.to...), m.cc...) }
func (m *Message) GetSubject() string   { return m.subject }
func (m *Message) HTML() string         { return m.html }
func (m *Message) PlainText() string    { return m.text }

func (m *Message) validate() error {
	if len(m.to) == 0 || strings.TrimSpace(m.to[0]) == "" {
		return ErrNoRecipients
	}
	return nil
}

// Sender is the From identity shared by all drivers.
type Sender struct {
	Address string
	Name    string
}

func defaultSender() Sender {
	return Sender{Address: config.MailFrom(), Name: config.MailFromName()}
}

// FromConfig picks a driver from MAIL_DRIVER: "smtp", "sendgrid" or "log".
// An unset driver uses sendgrid when SENDGRID_API_KEY is present, SMTP
// when MAIL_USERNAME is present, and the log driver otherwise.
func FromConfig() Mailer {
	driver := config.MailDriver()
	if driver == "" {
		switch {
		case config.SendGridAPIKey() != "":
			driver = "sendgrid"
		case config.Get("MAIL_USERNAME", "") != "":
			driver = "smtp"
		default:
			driver = "log"
		}
	}

	switch driver {
	case "sendgrid":
		return NewSendGrid(config.SendGridAPIKey(), defaultSender())
	case "smtp":
		return NewSMTP(SMTPFromConfig(), defaultSender())
	default:
		return NewLog(nil)
	}
}
