package services

import (
	"context"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/notification"
)

type sent struct {
	Address      string
	Notification notification.Notification
}

// recorder is a Notifier that keeps what it was asked to send.
type recorder struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recorder) SendAsync(_ context.Context, address string, n notification.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{Address: address, Notification: n})
}

func (r *recorder) all() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.sent...)
}

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
