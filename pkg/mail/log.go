package mail

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// LogMailer writes messages to the log instead of sending them. It also
// keeps the last messages in memory, which tests use as an outbox.
type LogMailer struct {
	log  *slog.Logger
	mu   sync.Mutex
	sent []*Message
}

func NewLog(l *slog.Logger) *LogMailer {
	return &LogMailer{log: l}
}

func (l *LogMailer) Send(ctx context.Context, m *Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	log := l.log
	if log == nil {
		log = logger.WithCtx(ctx)
	}
	log.Info("mail (log driver)", "to", m.to, "subject", m.subject)

	l.mu.Lock()
	l.sent = append(l.sent, m)
	l.mu.Unlock()
	return nil
}

// Sent returns a copy of every message sent so far.
func (l *LogMailer) Sent() []*Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Message(nil), l.sent...)
}
