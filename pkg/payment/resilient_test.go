package payment

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

// scripted returns errs in order, then succeeds.
type scripted struct {
	errs  []error
	calls int
}

func (s *scripted) CreateIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return &Intent{ID: "pi_ok", ClientSecret: "secret", AmountCents: p.AmountCents}, nil
}

func (s *scripted) GetIntent(ctx context.Context, id string) (*Intent, error) {
	return s.CreateIntent(ctx, IntentParams{})
}

func (s *scripted) ParseWebhook([]byte, string) (*Event, error) { return &Event{ID: "evt"}, nil }

func fast(r *Resilient) *Resilient {
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestResilient_RetriesTransient(t *testing.T) {
	inner := &scripted{errs: []error{syscall.ECONNRESET, &stripe.Error{HTTPStatusCode: http.StatusServiceUnavailable}}}
	r := fast(NewResilient(inner, DefaultPolicy(time.Second)))

	in, err := r.CreateIntent(context.Background(), IntentParams{AmountCents: 100})
	require.NoError(t, err)
	assert.Equal(t, "pi_ok", in.ID)
	assert.Equal(t, 3, inner.calls)
}

func TestResilient_DoesNotRetryClientErrors(t *testing.T) {
	declined := &stripe.Error{HTTPStatusCode: http.StatusPaymentRequired, Code: stripe.ErrorCodeCardDeclined}
	inner := &scripted{errs: []error{declined}}
	r := fast(NewResilient(inner, DefaultPolicy(time.Second)))

	_, err := r.CreateIntent(context.Background(), IntentParams{AmountCents: 100})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestResilient_GivesUpAfterMaxAttempts(t *testing.T) {
	inner := &scripted{errs: []error{ErrProviderDown, ErrProviderDown, ErrProviderDown, ErrProviderDown}}
	r := fast(NewResilient(inner, DefaultPolicy(time.Second)))

	_, err := r.GetIntent(context.Background(), "pi_1")
	assert.ErrorIs(t, err, ErrProviderDown)
	assert.Equal(t, 3, inner.calls)
}

func TestResilient_OpensCircuit(t *testing.T) {
	errs := make([]error, 20)
	for i := range errs {
		errs[i] = syscall.ECONNREFUSED
	}
	inner := &scripted{errs: errs}
	r := fast(NewResilient(inner, Policy{Timeout: time.Second, MaxAttempts: 1}))

	for i := 0; i < 5; i++ {
		_, _ = r.CreateIntent(context.Background(), IntentParams{AmountCents: 1})
	}
	calls := inner.calls

	_, err := r.CreateIntent(context.Background(), IntentParams{AmountCents: 1})
	assert.ErrorIs(t, err, ErrProviderDown)
	assert.Equal(t, calls, inner.calls, "open circuit must not reach the provider")
}

func TestResilient_StopsOnCancelledContext(t *testing.T) {
	inner := &scripted{errs: []error{ErrProviderDown, ErrProviderDown}}
	r := NewResilient(inner, DefaultPolicy(time.Second))
	r.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	_, err := r.CreateIntent(context.Background(), IntentParams{AmountCents: 1})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, inner.calls)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(&stripe.Error{Code: stripe.ErrorCodeRateLimit}))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.False(t, IsRetryable(ErrInvalidAmount))
	assert.False(t, IsRetryable(&stripe.Error{HTTPStatusCode: http.StatusBadRequest}))
}
