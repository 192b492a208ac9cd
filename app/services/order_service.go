package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/notifications"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

// OrderItemInput is one requested line. The product id may be sent as
// "product" or "productId".
type OrderItemInput struct {
	Product   string          `json:"product"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderInput struct {
	CustomerName    string                 `json:"customerName"    validate:"required,max=200"`
	Email           string                 `json:"email"           validate:"nullable,email"`
	Phone           string                 `json:"phone"`
	UserID          string                 `json:"userId"          validate:"nullable,objectid"`
	Items           []OrderItemInput       `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	// Honoured only by AdminCreate.
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// OrderUpdate is a partial update. Items replace the whole list when
// non-empty; the total is always derived and never taken from input.
type OrderUpdate struct {
	CustomerName    *string                 `json:"customerName"`
	Email           *string                 `json:"email"           validate:"nullable,email"`
	Phone           *string                 `json:"phone"`
	Items           []OrderItemInput        `json:"items"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
	Status          *models.OrderStatus     `json:"status"`
	PaymentStatus   *models.PaymentStatus   `json:"paymentStatus"`
}

func buildItems(in []OrderItemInput) ([]models.OrderItem, error) {
	if len(in) == 0 {
		return nil, apperr.Validation("Order items are required")
	}
	fields := map[string]string{}
	items := make([]models.OrderItem, 0, len(in))
	for i, it := range in {
		raw := it.Product
		if raw == "" {
			raw = it.ProductID
		}
		key := fmt.Sprintf("items.%d", i)
		if !validate.IsObjectID(raw) {
			fields[key+".product"] = "Product ID is required"
			continue
		}
		if it.Quantity < 1 {
			fields[key+".quantity"] = "Quantity must be at least 1"
			continue
		}
		if it.Price.IsNegative() {
			fields[key+".price"] = "Price must be a non-negative number"
			continue
		}
		id, _ := primitive.ObjectIDFromHex(raw)
		items = append(items, models.OrderItem{Product: id, Quantity: it.Quantity, Price: it.Price})
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("Invalid order items", fields)
	}
	return items, nil
}

func checkAddress(a models.ShippingAddress) error {
	if strings.TrimSpace(a.AddressLine) == "" {
		return apperr.ValidationFields("Validation failed", map[string]string{
			"shippingAddress.addressLine": "Address line is required",
		})
	}
	return nil
}

// OrderService owns order totals and the fulfillment and payment state
// machines.
type OrderService struct {
	orders   repositories.OrderRepository
	notifier Notifier
	now      Clock
}

// NewOrderService wires the service. notifier may be nil.
func NewOrderService(orders repositories.OrderRepository, notifier Notifier) *OrderService {
	return &OrderService{orders: orders, notifier: notifier, now: nowUTC}
}

// Create places a customer order. It always starts Pending and Unpaid. When
// the caller is signed in the order is linked to them.
func (s *OrderService) Create(ctx context.Context, in OrderInput, caller *models.User) (*models.Order, error) {
	in.Status, in.PaymentStatus = "", ""
	return s.create(ctx, in, caller, "guest")
}

// AdminCreate lets an admin set the initial status and payment status.
func (s *OrderService) AdminCreate(ctx context.Context, in OrderInput) (*models.Order, error) {
	if in.Status != "" && !in.Status.Valid() {
		return nil, apperr.Validation("Invalid order status")
	}
	if in.PaymentStatus != "" && !in.PaymentStatus.Valid() {
		return nil, apperr.Validation("Invalid payment status")
	}
	return s.create(ctx, in, nil, "admin")
}

func (s *OrderService) create(ctx context.Context, in OrderInput, caller *models.User, channel string) (*models.Order, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}
	if err := checkAddress(in.ShippingAddress); err != nil {
		return nil, err
	}

	now := s.now()
	o := &models.Order{
		CustomerName:    strings.TrimSpace(in.CustomerName),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           in.Phone,
		Items:           items,
		TotalAmount:     models.ComputeTotal(items),
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentUnpaid,
		ShippingAddress: in.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.Status != "" {
		o.Status = in.Status
	}
	if in.PaymentStatus != "" {
		o.PaymentStatus = in.PaymentStatus
	}
	switch {
	case caller != nil:
		id := caller.ID
		o.User = &id
	case in.UserID != "":
		id, _ := primitive.ObjectIDFromHex(in.UserID)
		o.User = &id
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	metrics.OrdersCreated.WithLabelValues(channel).Inc()
	logger.WithCtx(ctx).Info("order created", "order_id", o.ID.Hex(), "total", o.TotalAmount.String(), "channel", channel)

	if s.notifier != nil && o.Email != "" {
		s.notifier.SendAsync(ctx, o.Email, notifications.OrderConfirmation{Order: *o})
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx)
}

// ListMine returns the caller's own orders.
func (s *OrderService) ListMine(ctx context.Context, caller *models.User) ([]models.Order, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated(apperr.ReasonMissing, "Access token required")
	}
	return s.orders.ListByUser(ctx, caller.ID)
}

func (s *OrderService) Get(ctx context.Context, rawID string) (*models.Order, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, id)
}

// Update applies a partial change. Replacing items recomputes the total;
// status and payment changes must be legal transitions.
func (s *OrderService) Update(ctx context.Context, rawID string, in OrderUpdate) (*models.Order, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	o, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}

	if in.CustomerName != nil && strings.TrimSpace(*in.CustomerName) != "" {
		o.CustomerName = strings.TrimSpace(*in.CustomerName)
	}
	if in.Email != nil {
		o.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		o.Phone = *in.Phone
	}
	if len(in.Items) > 0 {
		items, err := buildItems(in.Items)
		if err != nil {
			return nil, err
		}
		o.Items = items
		o.TotalAmount = models.ComputeTotal(items)
	}
	if in.ShippingAddress != nil {
		if err := checkAddress(*in.ShippingAddress); err != nil {
			return nil, err
		}
		o.ShippingAddress = *in.ShippingAddress
	}
	if in.Status != nil {
		if !o.Status.CanTransition(*in.Status) {
			return nil, apperr.Validation(fmt.Sprintf("invalid status transition from %s to %s", o.Status, *in.Status))
		}
		o.Status = *in.Status
	}
	if in.PaymentStatus != nil {
		if !o.PaymentStatus.CanTransition(*in.PaymentStatus) {
			return nil, apperr.Validation(fmt.Sprintf("invalid payment status transition from %s to %s", o.PaymentStatus, *in.PaymentStatus))
		}
		o.PaymentStatus = *in.PaymentStatus
	}

	o.UpdatedAt = s.now()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, rawID string) (*models.Order, error) {
	o, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Delete(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// MarkPaid records a successful payment. A Pending order moves to
// Processing. Repeated calls after the first are no-ops and report
// applied=false.
func (s *OrderService) MarkPaid(ctx context.Context, id primitive.ObjectID, intentID, method string) (*models.Order, bool, error) {
	if method == "" {
		method = "Stripe"
	}
	o, applied, err := s.orders.MarkPaid(ctx, id, intentID, method, s.now())
	if err != nil {
		return nil, false, err
	}
	if applied {
		logger.WithCtx(ctx).Info("order paid", "order_id", id.Hex(), "payment_intent", intentID)
	}
	return o, applied, nil
}

// MarkFailed flags an Unpaid order as Failed. Paid orders and fulfillment
// status are never touched.
func (s *OrderService) MarkFailed(ctx context.Context, id primitive.ObjectID) (bool, error) {
	applied, err := s.orders.MarkFailed(ctx, id, s.now())
	if err != nil {
		return false, err
	}
	if applied {
		logger.WithCtx(ctx).Info("order payment failed", "order_id", id.Hex())
	}
	return applied, nil
}
