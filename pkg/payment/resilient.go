package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// Policy tunes Resilient.
type Policy struct {
	Timeout     time.Duration // per attempt
	MaxAttempts int
	BaseDelay   time.Duration // doubled after each failed attempt
}

// DefaultPolicy returns three attempts of timeout each, backing off from 200ms.
func DefaultPolicy(timeout time.Duration) Policy {
	return Policy{Timeout: timeout, MaxAttempts: 3, BaseDelay: 200 * time.Millisecond}
}

// Resilient decorates a Provider with per-call timeouts, retry with
// exponential backoff on transient errors and a circuit breaker.
type Resilient struct {
	next    Provider
	policy  Policy
	breaker *gobreaker.CircuitBreaker
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewResilient wraps next. The breaker opens after 5 consecutive transient
// failures, or half of at least 10 calls, and probes again after a minute.
func NewResilient(next Provider, policy Policy) *Resilient {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	settings := gobreaker.Settings{
		Name:        "payment-provider",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5)
		},
		// Declines and bad requests are answers, not outages.
		IsSuccessful: func(err error) bool { return err == nil || !IsRetryable(err) },
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Resilient{
		next:    next,
		policy:  policy,
		breaker: gobreaker.NewCircuitBreaker(settings),
		sleep:   sleepCtx,
	}
}

func (r *Resilient) CreateIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	return r.call(ctx, "create_intent", func(ctx context.Context) (*Intent, error) {
		return r.next.CreateIntent(ctx, p)
	})
}

func (r *Resilient) GetIntent(ctx context.Context, id string) (*Intent, error) {
	return r.call(ctx, "get_intent", func(ctx context.Context) (*Intent, error) {
		return r.next.GetIntent(ctx, id)
	})
}

// ParseWebhook is local signature verification and is not retried.
func (r *Resilient) ParseWebhook(payload []byte, signature string) (*Event, error) {
	return r.next.ParseWebhook(payload, signature)
}

func (r *Resilient) call(ctx context.Context, op string, fn func(context.Context) (*Intent, error)) (*Intent, error) {
	var lastErr error
	delay := r.policy.BaseDelay

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		res, err := r.breaker.Execute(func() (interface{}, error) {
			actx, cancel := r.attemptCtx(ctx)
			defer cancel()
			return fn(actx)
		})
		if err == nil {
			metrics.Payments.WithLabelValues(op, "ok").Inc()
			return res.(*Intent), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.Payments.WithLabelValues(op, "circuit_open").Inc()
			return nil, fmt.Errorf("%w: %w", ErrProviderDown, err)
		}
		lastErr = err
		if !IsRetryable(err) || attempt == r.policy.MaxAttempts {
			break
		}

		logger.WithCtx(ctx).Warn("payment provider call failed, retrying",
			"op", op, "attempt", attempt, "error", err)
		if serr := r.sleep(ctx, delay); serr != nil {
			lastErr = serr
			break
		}
		delay *= 2
	}

	metrics.Payments.WithLabelValues(op, "error").Inc()
	return nil, lastErr
}

func (r *Resilient) attemptCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.policy.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.policy.Timeout)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
