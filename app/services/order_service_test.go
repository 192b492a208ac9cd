package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/notifications"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

func newOrderService() (*OrderService, *recorder) {
	rec := &recorder{}
	return NewOrderService(repositories.NewMemory().Orders, rec), rec
}

func item(price string, qty int) OrderItemInput {
	return OrderItemInput{
		Product:  primitive.NewObjectID().Hex(),
		Quantity: qty,
		Price:    decimal.RequireFromString(price),
	}
}

func orderInput(items ...OrderItemInput) OrderInput {
	return OrderInput{
		CustomerName:    "Ann",
		Email:           "Ann@Example.com",
		Items:           items,
		ShippingAddress: models.ShippingAddress{AddressLine: "1 Main St", City: "Lahore"},
	}
}

func TestOrderCreate_ComputesTotalAndDefaults(t *testing.T) {
	svc, rec := newOrderService()

	in := orderInput(item("10", 2), item("15", 1))
	in.Status = models.OrderShipped
	in.PaymentStatus = models.PaymentPaid

	o, err := svc.Create(context.Background(), in, nil)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(35).Equal(o.TotalAmount))
	assert.Equal(t, models.OrderPending, o.Status, "customers cannot choose the status")
	assert.Equal(t, models.PaymentUnpaid, o.PaymentStatus)
	assert.Equal(t, "ann@example.com", o.Email)
	assert.Nil(t, o.User)

	sent := rec.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "ann@example.com", sent[0].Address)
	assert.IsType(t, notifications.OrderConfirmation{}, sent[0].Notification)
}

func TestOrderCreate_LinksCaller(t *testing.T) {
	svc, _ := newOrderService()
	caller := &models.User{ID: primitive.NewObjectID()}

	o, err := svc.Create(context.Background(), orderInput(item("1", 1)), caller)
	require.NoError(t, err)
	require.NotNil(t, o.User)
	assert.Equal(t, caller.ID, *o.User)

	mine, err := svc.ListMine(context.Background(), caller)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestOrderCreate_Validation(t *testing.T) {
	svc, _ := newOrderService()
	ctx := context.Background()

	_, err := svc.Create(ctx, orderInput(), nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, orderInput(item("5", 0)), nil)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Fields, "items.0.quantity")

	_, err = svc.Create(ctx, orderInput(item("-1", 1)), nil)
	e, _ = apperr.As(err)
	assert.Contains(t, e.Fields, "items.0.price")

	bad := orderInput(item("5", 1))
	bad.ShippingAddress.AddressLine = " "
	_, err = svc.Create(ctx, bad, nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAdminCreate_HonoursStatus(t *testing.T) {
	svc, _ := newOrderService()
	in := orderInput(item("3", 1))
	in.Status = models.OrderProcessing
	in.PaymentStatus = models.PaymentPaid

	o, err := svc.AdminCreate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, o.Status)
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus)

	in.Status = "Lost"
	_, err = svc.AdminCreate(context.Background(), in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestOrderUpdate_ItemsRecomputeTotal(t *testing.T) {
	svc, _ := newOrderService()
	ctx := context.Background()
	o, err := svc.Create(ctx, orderInput(item("10", 1)), nil)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, o.ID.Hex(), OrderUpdate{Items: []OrderItemInput{item("2.50", 4)}})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(updated.TotalAmount))
	assert.Len(t, updated.Items, 1)
}

func TestOrderUpdate_ShippingOnlyKeepsTotal(t *testing.T) {
	svc, _ := newOrderService()
	ctx := context.Background()
	o, err := svc.Create(ctx, orderInput(item("10", 2)), nil)
	require.NoError(t, err)

	addr := models.ShippingAddress{AddressLine: "2 Side St", Country: "PK"}
	updated, err := svc.Update(ctx, o.ID.Hex(), OrderUpdate{ShippingAddress: &addr})
	require.NoError(t, err)
	assert.Equal(t, "2 Side St", updated.ShippingAddress.AddressLine)
	assert.True(t, decimal.NewFromInt(20).Equal(updated.TotalAmount))
}

func TestOrderUpdate_StatusTransitions(t *testing.T) {
	svc, _ := newOrderService()
	ctx := context.Background()
	o, err := svc.Create(ctx, orderInput(item("10", 1)), nil)
	require.NoError(t, err)

	shipped := models.OrderShipped
	_, err = svc.Update(ctx, o.ID.Hex(), OrderUpdate{Status: &shipped})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "invalid status transition from Pending to Shipped", e.Message)

	for _, st := range []models.OrderStatus{models.OrderProcessing, models.OrderShipped, models.OrderDelivered} {
		st := st
		_, err = svc.Update(ctx, o.ID.Hex(), OrderUpdate{Status: &st})
		require.NoError(t, err, st)
	}

	cancelled := models.OrderCancelled
	_, err = svc.Update(ctx, o.ID.Hex(), OrderUpdate{Status: &cancelled})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestOrderMarkPaid_OnceOnly(t *testing.T) {
	svc, _ := newOrderService()
	ctx := context.Background()
	svc.now = fixedClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	o, err := svc.Create(ctx, orderInput(item("10", 1)), nil)
	require.NoError(t, err)

	paid, applied, err := svc.MarkPaid(ctx, o.ID, "pi_1", "")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, models.OrderProcessing, paid.Status)
	assert.Equal(t, "Stripe", paid.PaymentMethod)

	_, applied, err = svc.MarkPaid(ctx, o.ID, "pi_2", "card")
	require.NoError(t, err)
	assert.False(t, applied)

	failed, err := svc.MarkFailed(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, failed, "a paid order never becomes failed")
}

func TestOrderDeleteAndGet(t *testing.T) {
	svc, _ := newOrderService()
	ctx := context.Background()
	o, err := svc.Create(ctx, orderInput(item("1", 1)), nil)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, o.ID, deleted.ID)

	_, err = svc.Get(ctx, o.ID.Hex())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Get(ctx, "123")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
