package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer delivers through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   Sender
}

func NewSendGrid(apiKey string, from Sender) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (s *SendGridMailer) Send(ctx context.Context, m *Message) error {
	if err := m.validate(); err != nil {
		return err
	}

	out := buildSendGrid(s.from, m)
	resp, err := s.client.SendWithContext(ctx, out)
	if err != nil {
		return fmt.Errorf("mail: sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail: sendgrid returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// buildSendGrid maps a Message onto SGMailV3 with click and open tracking
// off, since tracking rewrites the verification and reset links.
func buildSendGrid(from Sender, m *Message) *sgmail.SGMailV3 {
	out := sgmail.NewV3Mail()
	out.SetFrom(sgmail.NewEmail(from.Name, from.Address))
	out.Subject = m.subject

	p := sgmail.NewPersonalization()
	for _, to := range m.to {
		p.AddTos(sgmail.NewEmail("", to))
	}
	for _, cc := range m.cc {
		p.AddCCs(sgmail.NewEmail("", cc))
	}
	out.AddPersonalizations(p)

	if m.text != "" {
		out.AddContent(sgmail.NewContent("text/plain", m.text))
	}
	if m.html != "" {
		out.AddContent(sgmail.NewContent("text/html", m.html))
	}

	tracking := sgmail.NewTrackingSettings()
	click := sgmail.NewClickTrackingSetting()
	click.SetEnable(false)
	click.SetEnableText(false)
	tracking.SetClickTracking(click)
	open := sgmail.NewOpenTrackingSetting()
	open.SetEnable(false)
	tracking.SetOpenTracking(open)
	out.SetTrackingSettings(tracking)

	return out
}
