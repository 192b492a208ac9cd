// Package payment talks to the external payment-intent provider.
//
// Services depend on the Provider interface only. StripeProvider is the
// production implementation; Resilient wraps any Provider with a timeout,
// retry with backoff and a circuit breaker.
package payment

import (
	"context"
	"errors"
)

// Webhook event types the order state machine reacts to.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// StatusSucceeded is the intent status of a completed payment.
const StatusSucceeded = "succeeded"

var (
	ErrNotConfigured    = errors.New("payment: provider not configured")
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrProviderDown     = errors.New("payment: provider unavailable")
	ErrInvalidAmount    = errors.New("payment: amount must be positive")
)

// IntentParams describes a payment intent to create.
type IntentParams struct {
	AmountCents    int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// Intent is the provider-neutral view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
	Metadata     map[string]string
}

// Succeeded reports whether the intent completed.
func (i *Intent) Succeeded() bool { return i != nil && i.Status == StatusSucceeded }

// Event is a verified webhook event. Intent is nil for event types that do
// not carry a payment intent.
type Event struct {
	ID     string
	Type   string
	Intent *Intent
}

// Provider creates and inspects payment intents and verifies webhooks.
type Provider interface {
	CreateIntent(ctx context.Context, p IntentParams) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// Unconfigured is used when no provider key is set. Every call fails with
// ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) CreateIntent(context.Context, IntentParams) (*Intent, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) GetIntent(context.Context, string) (*Intent, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) ParseWebhook([]byte, string) (*Event, error) {
	return nil, ErrNotConfigured
}
