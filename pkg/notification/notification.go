// Package notification dispatches notifications over one or more channels.
//
// Define a notification:
//
//	type OrderConfirmation struct{ Order models.Order }
//	func (n OrderConfirmation) Via() []string { return []string{notification.ChannelMail} }
//	func (n OrderConfirmation) ToMail() notification.MailData {
//	    return notification.MailData{Subject: "Order confirmed", HTML: "..."}
//	}
//
// Send it without blocking the request:
//
//	dispatcher.SendAsync(ctx, "user@example.com", OrderConfirmation{Order: o})
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/mail"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/workerpool"
)

const (
	ChannelMail = "mail"
	ChannelLog  = "log"
)

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	HTML    string
	Text    string // plain-text alternative
}

// LogData is a structured log line.
type LogData struct {
	Message string
	Attrs   []any
}

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the channel names to deliver on.
	Via() []string
}

// Mailable supports the mail channel.
type Mailable interface {
	ToMail() MailData
}

// Loggable supports the log channel.
type Loggable interface {
	ToLog() LogData
}

// Options tunes a Dispatcher.
type Options struct {
	Timeout     time.Duration // per delivery attempt
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultOptions returns 10s attempts, three tries, backing off from 500ms.
func DefaultOptions() Options {
	return Options{Timeout: 10 * time.Second, MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

// Dispatcher delivers notifications. Failures are logged and counted; they
// never fail the caller's request.
type Dispatcher struct {
	mailer  mail.Mailer
	pool    *workerpool.Pool
	opts    Options
	breaker *gobreaker.CircuitBreaker
	sleep   func(context.Context, time.Duration) error
}

// NewDispatcher returns a Dispatcher. pool may be nil, in which case
// SendAsync delivers inline.
func NewDispatcher(mailer mail.Mailer, pool *workerpool.Pool, opts Options) *Dispatcher {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &Dispatcher{
		mailer: mailer,
		pool:   pool,
		opts:   opts,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "mail",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.BreakerState.WithLabelValues(name).Set(float64(to))
				logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		sleep: sleepCtx,
	}
}

// Send delivers n on every channel it names and returns the failures.
func (d *Dispatcher) Send(ctx context.Context, address string, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		err := d.dispatch(ctx, address, channel, n)
		status := "sent"
		if err != nil {
			status = "failed"
			logger.WithCtx(ctx).Error("notification: channel failed",
				"channel", channel, "notification", fmt.Sprintf("%T", n), "error", err)
			errs = append(errs, err)
		}
		metrics.Notifications.WithLabelValues(channel, status).Inc()
	}
	return errs
}

// SendAsync queues delivery on the worker pool. The request context's
// values are kept but its cancellation is not, so delivery outlives the
// response. A full or closed pool delivers inline.
func (d *Dispatcher) SendAsync(ctx context.Context, address string, n Notification) {
	bg := context.WithoutCancel(ctx)
	task := func() { d.Send(bg, address, n) }

	if d.pool == nil {
		task()
		return
	}
	if err := d.pool.Submit(task); err != nil {
		logger.WithCtx(ctx).Warn("notification: pool unavailable, sending inline", "error", err)
		task()
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case ChannelMail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return d.sendMail(ctx, address, m.ToMail())

	case ChannelLog:
		l, ok := n.(Loggable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Loggable", n)
		}
		data := l.ToLog()
		logger.WithCtx(ctx).Info(data.Message, data.Attrs...)
		return nil

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

func (d *Dispatcher) sendMail(ctx context.Context, address string, data MailData) error {
	to := data.To
	if to == "" {
		to = address
	}
	if to == "" {
		return mail.ErrNoRecipients
	}
	msg := mail.To(to).Subject(data.Subject).Body(data.HTML).Text(data.Text)

	var err error
	delay := d.opts.BaseDelay
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		_, err = d.breaker.Execute(func() (interface{}, error) {
			actx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
			defer cancel()
			return nil, d.mailer.Send(actx, msg)
		})
		if err == nil || errors.Is(err, mail.ErrNoRecipients) ||
			errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return err
		}
		if attempt < d.opts.MaxAttempts {
			if serr := d.sleep(ctx, delay); serr != nil {
				return serr
			}
			delay *= 2
		}
	}
	return err
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
