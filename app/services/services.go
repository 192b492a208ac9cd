// Package services holds the business rules behind each HTTP resource.
// Services return *apperr.Error values for anything a client can act on.
package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
	"github.com/shashiranjanraj/shopfront/pkg/notification"
	"github.com/shashiranjanraj/shopfront/pkg/payment"
	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

// Notifier sends a notification without blocking the caller.
type Notifier interface {
	SendAsync(ctx context.Context, address string, n notification.Notification)
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func parseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid ID format")
	}
	return id, nil
}

// check runs struct-tag validation for callers that bypass the HTTP binder.
func check(v interface{}) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return apperr.ValidationFields("Validation failed", errs)
	}
	return nil
}

func nowUTC() time.Time { return time.Now().UTC() }

// Set bundles every service built over one repository set.
type Set struct {
	Products   *ProductService
	Categories *CategoryService
	Attributes *AttributeService
	Orders     *OrderService
	Users      *UserService
	Payments   *PaymentService
	Dashboard  *DashboardService
}

// Deps are the collaborators New wires into the services.
type Deps struct {
	Repos    repositories.Set
	Cache    cache.Cache
	Payments payment.Provider
	Notifier Notifier
	Signer   *auth.Signer
}

func New(d Deps) Set {
	orders := NewOrderService(d.Repos.Orders, d.Notifier)
	return Set{
		Products:   NewProductService(d.Repos.Products, d.Cache),
		Categories: NewCategoryService(d.Repos.Categories),
		Attributes: NewAttributeService(d.Repos.Attributes),
		Orders:     orders,
		Users:      NewUserService(d.Repos.Users, d.Signer, d.Notifier),
		Payments:   NewPaymentService(d.Payments, orders, d.Repos.PaymentEvents),
		Dashboard:  NewDashboardService(d.Repos.Orders, d.Repos.Products, d.Repos.Users),
	}
}
