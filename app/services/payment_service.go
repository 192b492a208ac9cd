package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/payment"
)

// DefaultCurrency applies when a create-intent request names none.
const DefaultCurrency = "pkr"

type IntentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	OrderID  string          `json:"orderId"  validate:"nullable,objectid"`
}

type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type ConfirmRequest struct {
	OrderID         string `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
	PaymentMethod   string `json:"paymentMethod"`
}

// PaymentService bridges the payment provider and the order state machine.
type PaymentService struct {
	provider payment.Provider
	orders   *OrderService
	events   repositories.PaymentEventRepository
	now      Clock
}

func NewPaymentService(provider payment.Provider, orders *OrderService, events repositories.PaymentEventRepository) *PaymentService {
	return &PaymentService{provider: provider, orders: orders, events: events, now: nowUTC}
}

// providerError hides provider detail from clients.
func providerError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, payment.ErrNotConfigured):
		return apperr.ExternalService("Payment provider not configured", err)
	case errors.Is(err, payment.ErrInvalidAmount):
		return apperr.Validation("Invalid amount")
	}
	return apperr.ExternalService("Payment provider unavailable", err)
}

func observePayment(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.Payments.WithLabelValues(operation, outcome).Inc()
}

// CreateIntent opens a payment intent for amount in the major currency
// unit. The amount is converted to minor units with half-up rounding.
func (s *PaymentService) CreateIntent(ctx context.Context, req IntentRequest) (res *IntentResult, err error) {
	defer func() { observePayment("create_intent", err) }()

	if err := check(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation("Invalid amount")
	}
	cents := req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents <= 0 {
		return nil, apperr.Validation("Invalid amount")
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	meta := map[string]string{"integration_check": "accept_a_payment"}
	if req.OrderID != "" {
		if _, err := s.orders.Get(ctx, req.OrderID); err != nil {
			return nil, err
		}
		meta["orderId"] = req.OrderID
	}

	intent, err := s.provider.CreateIntent(ctx, payment.IntentParams{
		AmountCents:    cents,
		Currency:       currency,
		Metadata:       meta,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		logger.WithCtx(ctx).Error("payment intent creation failed", "error", err)
		return nil, providerError(err)
	}
	return &IntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

// Confirm checks the intent with the provider and settles the order when
// the payment succeeded.
func (s *PaymentService) Confirm(ctx context.Context, req ConfirmRequest) (o *models.Order, err error) {
	defer func() { observePayment("confirm", err) }()

	if req.OrderID == "" || req.PaymentIntentID == "" {
		return nil, apperr.Validation("Order ID and payment intent ID are required")
	}
	orderID, err := parseID(req.OrderID)
	if err != nil {
		return nil, err
	}

	intent, err := s.provider.GetIntent(ctx, req.PaymentIntentID)
	if err != nil {
		logger.WithCtx(ctx).Error("payment intent lookup failed", "payment_intent", req.PaymentIntentID, "error", err)
		return nil, providerError(err)
	}
	if !intent.Succeeded() {
		return nil, apperr.Validation("Payment not completed")
	}
	if owner := intent.Metadata["orderId"]; owner != "" && owner != req.OrderID {
		return nil, apperr.Validation("Payment intent does not belong to this order")
	}

	o, _, err = s.orders.MarkPaid(ctx, orderID, intent.ID, req.PaymentMethod)
	return o, err
}

// HandleWebhook verifies and applies a provider event. Each
// (intent, event type) pair is applied at most once; replays and unknown
// event types succeed without side effects.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		if errors.Is(err, payment.ErrNotConfigured) {
			return apperr.ExternalService("Payment provider not configured", err)
		}
		return apperr.Validation("Webhook Error: " + err.Error())
	}

	log := logger.WithCtx(ctx).With("event_id", ev.ID, "event_type", ev.Type)

	if ev.Type != payment.EventIntentSucceeded && ev.Type != payment.EventIntentFailed {
		log.Info("webhook event ignored")
		metrics.WebhookEvents.WithLabelValues(ev.Type, "ignored").Inc()
		return nil
	}
	if ev.Intent == nil {
		metrics.WebhookEvents.WithLabelValues(ev.Type, "ignored").Inc()
		return nil
	}
	orderID, err := primitive.ObjectIDFromHex(ev.Intent.Metadata["orderId"])
	if err != nil {
		log.Info("webhook event has no order", "payment_intent", ev.Intent.ID)
		metrics.WebhookEvents.WithLabelValues(ev.Type, "ignored").Inc()
		return nil
	}

	record := &models.PaymentEvent{
		EventID:         ev.ID,
		PaymentIntentID: ev.Intent.ID,
		Type:            ev.Type,
		OrderID:         orderID,
		AppliedAt:       s.now(),
	}
	if err := s.events.Record(ctx, record); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEvent) {
			log.Info("webhook replay skipped", "payment_intent", ev.Intent.ID)
			metrics.WebhookEvents.WithLabelValues(ev.Type, "duplicate").Inc()
			return nil
		}
		metrics.WebhookEvents.WithLabelValues(ev.Type, "error").Inc()
		return err
	}

	if err := s.apply(ctx, ev, orderID); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			log.Warn("webhook order not found", "order_id", orderID.Hex())
			metrics.WebhookEvents.WithLabelValues(ev.Type, "ignored").Inc()
			return nil
		}
		// Let the provider's retry apply it later.
		if rerr := s.events.Release(ctx, ev.Intent.ID, ev.Type); rerr != nil {
			log.Error("webhook release failed", "error", rerr)
		}
		metrics.WebhookEvents.WithLabelValues(ev.Type, "error").Inc()
		return err
	}
	metrics.WebhookEvents.WithLabelValues(ev.Type, "applied").Inc()
	return nil
}

func (s *PaymentService) apply(ctx context.Context, ev *payment.Event, orderID primitive.ObjectID) error {
	switch ev.Type {
	case payment.EventIntentSucceeded:
		_, _, err := s.orders.MarkPaid(ctx, orderID, ev.Intent.ID, "")
		return err
	case payment.EventIntentFailed:
		if _, err := s.orders.Get(ctx, orderID.Hex()); err != nil {
			return err
		}
		_, err := s.orders.MarkFailed(ctx, orderID)
		return err
	}
	return nil
}
