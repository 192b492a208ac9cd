// Package paymenttest provides an in-memory payment.Provider for tests.
package paymenttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/shopfront/pkg/payment"
)

// Secret is the only signature Fake.ParseWebhook accepts.
const Secret = "whsec_test"

// Fake stores intents in memory. Set Err to make the next calls fail.
type Fake struct {
	mu      sync.Mutex
	intents map[string]*payment.Intent
	seq     int
	Err     error
	Created []payment.IntentParams
}

func New() *Fake {
	return &Fake{intents: make(map[string]*payment.Intent)}
}

func (f *Fake) CreateIntent(ctx context.Context, p payment.IntentParams) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if p.AmountCents <= 0 {
		return nil, payment.ErrInvalidAmount
	}
	f.seq++
	id := fmt.Sprintf("pi_test_%d", f.seq)
	in := &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		AmountCents:  p.AmountCents,
		Currency:     p.Currency,
		Metadata:     p.Metadata,
	}
	f.intents[id] = in
	f.Created = append(f.Created, p)
	cp := *in
	return &cp, nil
}

func (f *Fake) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	in, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("paymenttest: no intent %s", id)
	}
	cp := *in
	return &cp, nil
}

// SetStatus changes a stored intent's status, e.g. to "succeeded".
func (f *Fake) SetStatus(id, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in, ok := f.intents[id]; ok {
		in.Status = status
	}
}

// Put stores an intent directly.
func (f *Fake) Put(in payment.Intent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents[in.ID] = &in
}

type wireEvent struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	IntentID string            `json:"intentId"`
	Metadata map[string]string `json:"metadata"`
}

// EventPayload builds a payload ParseWebhook understands.
func EventPayload(eventID, typ, intentID string, metadata map[string]string) []byte {
	b, _ := json.Marshal(wireEvent{ID: eventID, Type: typ, IntentID: intentID, Metadata: metadata})
	return b
}

func (f *Fake) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	if signature != Secret {
		return nil, payment.ErrInvalidSignature
	}
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}
	ev := &payment.Event{ID: w.ID, Type: w.Type}
	if w.IntentID != "" {
		ev.Intent = &payment.Intent{ID: w.IntentID, Metadata: w.Metadata}
	}
	return ev, nil
}
