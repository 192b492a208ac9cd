package models_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
)

func TestComputeTotal(t *testing.T) {
	items := []models.OrderItem{
		{Product: primitive.NewObjectID(), Price: decimal.NewFromInt(10), Quantity: 2},
		{Product: primitive.NewObjectID(), Price: decimal.NewFromInt(5), Quantity: 3},
	}
	assert.True(t, models.ComputeTotal(items).Equal(decimal.NewFromInt(35)))
	assert.True(t, models.ComputeTotal(nil).IsZero())
}

func TestComputeTotal_Fractional(t *testing.T) {
	items := []models.OrderItem{
		{Price: decimal.RequireFromString("0.10"), Quantity: 3},
		{Price: decimal.RequireFromString("19.99"), Quantity: 1},
	}
	assert.Equal(t, "20.29", models.ComputeTotal(items).StringFixed(2))
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to models.OrderStatus }{
		{models.OrderPending, models.OrderProcessing},
		{models.OrderProcessing, models.OrderShipped},
		{models.OrderShipped, models.OrderDelivered},
		{models.OrderPending, models.OrderCancelled},
		{models.OrderProcessing, models.OrderCancelled},
		{models.OrderShipped, models.OrderCancelled},
		{models.OrderDelivered, models.OrderDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to models.OrderStatus }{
		{models.OrderPending, models.OrderShipped},
		{models.OrderDelivered, models.OrderCancelled},
		{models.OrderCancelled, models.OrderPending},
		{models.OrderShipped, models.OrderProcessing},
		{models.OrderPending, models.OrderStatus("Lost")},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, models.PaymentUnpaid.CanTransition(models.PaymentPaid))
	assert.True(t, models.PaymentUnpaid.CanTransition(models.PaymentFailed))
	assert.True(t, models.PaymentFailed.CanTransition(models.PaymentPaid))
	assert.False(t, models.PaymentPaid.CanTransition(models.PaymentFailed))
	assert.False(t, models.PaymentPaid.CanTransition(models.PaymentUnpaid))
}

func TestStringOrList_UnmarshalJSON(t *testing.T) {
	cases := map[string][]string{
		`"Nike"`:            {"Nike"},
		`["Nike","Adidas"]`: {"Nike", "Adidas"},
		`42`:                {"42"},
		`[1, true, "x"]`:    {"1", "true", "x"},
		`null`:              nil,
	}
	for in, want := range cases {
		var s models.StringOrList
		require.NoError(t, json.Unmarshal([]byte(in), &s), in)
		assert.Equal(t, want, s.Values(), in)
	}

	var bad models.StringOrList
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &bad))
}

func TestMergeAttributes_FixedWins(t *testing.T) {
	fixed := models.FixedAttributes{Colors: []string{"red"}, Brand: []string{"Acme"}}
	additional := models.AttributeMap{"colors": {"green"}, "pattern": {"striped"}}

	merged := models.MergeAttributes(fixed, additional)

	assert.Equal(t, []string{"red"}, merged["colors"])
	assert.Equal(t, []string{"Acme"}, merged["brand"])
	assert.Equal(t, []string{"striped"}, merged["pattern"])
	assert.NotContains(t, merged, "sizes")
}

func TestProductJSON_IncludesAllAttributes(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	p := models.Product{
		ID:                   primitive.NewObjectID(),
		Name:                 "Chair1",
		Prices:               models.PriceTiers{Small: &price},
		Attributes:           models.FixedAttributes{Colors: []string{"red"}},
		AdditionalAttributes: models.AttributeMap{"finish": {"matte"}},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Chair1", out["name"])
	assert.Equal(t, 12.5, out["prices"].(map[string]any)["small"])
	all := out["allAttributes"].(map[string]any)
	assert.Contains(t, all, "colors")
	assert.Contains(t, all, "finish")
}

func TestUserJSON_HidesSecrets(t *testing.T) {
	u := models.User{Name: "A", Email: "a@b.co", Password: "hash", VerificationToken: "tok", ResetPasswordToken: "r"}
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "tok")
	assert.NotContains(t, string(raw), `"r"`)
}
