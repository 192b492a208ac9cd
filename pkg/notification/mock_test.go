package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/shopfront/pkg/mail"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg *mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type overridden struct{}

func (overridden) Via() []string { return []string{ChannelMail} }
func (overridden) ToMail() MailData {
	return MailData{To: "ops@example.com", Subject: "Order failed", Text: "see dashboard"}
}

func TestSend_MailDataToOverridesAddress(t *testing.T) {
	m := new(mockMailer)
	m.On("Send", mock.Anything, mock.MatchedBy(func(msg *mail.Message) bool {
		return msg.GetSubject() == "Order failed" && msg.Recipients()[0] == "ops@example.com"
	})).Return(nil).Once()

	errs := fastDispatcher(m, nil).Send(context.Background(), "buyer@example.com", overridden{})
	assert.Empty(t, errs)
	m.AssertExpectations(t)
}
