package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every fulfillment state in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further fulfillment transition is possible.
func (s OrderStatus) Terminal() bool { return s == OrderDelivered || s == OrderCancelled }

// CanTransition reports whether the fulfillment state may move from s to to.
// Staying in the same state is always allowed.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if !to.Valid() {
		return false
	}
	if s == to {
		return true
	}
	if to == OrderCancelled {
		return !s.Terminal()
	}
	switch s {
	case OrderPending:
		return to == OrderProcessing
	case OrderProcessing:
		return to == OrderShipped
	case OrderShipped:
		return to == OrderDelivered
	}
	return false
}

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
	PaymentFailed PaymentStatus = "Failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentUnpaid || s == PaymentPaid || s == PaymentFailed
}

// CanTransition reports whether payment may move from s to to. Paid is final;
// a failed attempt may still be settled by a later successful one.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	if !to.Valid() {
		return false
	}
	if s == to {
		return true
	}
	switch s {
	case PaymentUnpaid:
		return to == PaymentPaid || to == PaymentFailed
	case PaymentFailed:
		return to == PaymentPaid
	}
	return false
}

// OrderItem is one line of an order. Price is the unit price captured when
// the line was written, not the live catalogue price.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product"  json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    decimal.Decimal    `bson:"price"    json:"price"`
}

// LineTotal is price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress is embedded in the order document.
type ShippingAddress struct {
	AddressLine string `bson:"addressLine"          json:"addressLine"`
	City        string `bson:"city,omitempty"       json:"city,omitempty"`
	PostalCode  string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country     string `bson:"country,omitempty"    json:"country,omitempty"`
}

// Order is a customer purchase. TotalAmount is derived from Items.
type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"             json:"_id"`
	CustomerName    string              `bson:"customerName"              json:"customerName"`
	Email           string              `bson:"email,omitempty"           json:"email,omitempty"`
	Phone           string              `bson:"phone,omitempty"           json:"phone,omitempty"`
	User            *primitive.ObjectID `bson:"user,omitempty"            json:"user,omitempty"`
	Items           []OrderItem         `bson:"items"                     json:"items"`
	TotalAmount     decimal.Decimal     `bson:"totalAmount"               json:"totalAmount"`
	Status          OrderStatus         `bson:"status"                    json:"status"`
	PaymentStatus   PaymentStatus       `bson:"paymentStatus"             json:"paymentStatus"`
	PaymentMethod   string              `bson:"paymentMethod,omitempty"   json:"paymentMethod,omitempty"`
	PaymentIntentID string              `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	ShippingAddress ShippingAddress     `bson:"shippingAddress"           json:"shippingAddress"`
	CreatedAt       time.Time           `bson:"createdAt"                 json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt"                 json:"updatedAt"`
}

// ComputeTotal sums price × quantity over items.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// PaymentEvent records that a provider event was applied to an order. The
// (paymentIntentId, type) pair is unique, which makes replays detectable.
type PaymentEvent struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"   json:"_id"`
	EventID         string             `bson:"eventId"         json:"eventId"`
	PaymentIntentID string             `bson:"paymentIntentId" json:"paymentIntentId"`
	Type            string             `bson:"type"            json:"type"`
	OrderID         primitive.ObjectID `bson:"orderId"         json:"orderId"`
	AppliedAt       time.Time          `bson:"appliedAt"       json:"appliedAt"`
}
