package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeProvider implements Provider on the Stripe API.
type StripeProvider struct {
	client        *client.API
	webhookSecret string
}

// NewStripe returns a provider using a private client.API rather than the
// package-level stripe.Key.
func NewStripe(apiKey, webhookSecret string) *StripeProvider {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeProvider{client: sc, webhookSecret: webhookSecret}
}

func (s *StripeProvider) CreateIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	if p.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountCents),
		Currency: stripe.String(strings.ToLower(p.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(p.IdempotencyKey)
	}
	params.Context = ctx

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return fromStripe(pi), nil
}

func (s *StripeProvider) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.client.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return fromStripe(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
// API version mismatches are tolerated since only intent fields are read.
func (s *StripeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if s.webhookSecret == "" {
		return nil, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("payment: decode intent in %s: %w", event.ID, err)
	}
	out.Intent = fromStripe(&pi)
	return out, nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

// mapStripeError keeps stripe types out of callers. Outages become
// ErrProviderDown; the original error stays in the chain for retry checks.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %w", ErrProviderDown, err)
		}
		if stripeErr.HTTPStatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", ErrNotConfigured, err)
		}
		return fmt.Errorf("payment: stripe %s: %w", stripeErr.Code, err)
	}
	return fmt.Errorf("payment: stripe: %w", err)
}
