// Package controllers adapts HTTP requests to service calls.
package controllers

import "github.com/shashiranjanraj/shopfront/app/services"

type Set struct {
	Products   *ProductController
	Categories *CategoryController
	Attributes *AttributeController
	Orders     *OrderController
	Users      *UserController
	Payments   *PaymentController
	Dashboard  *DashboardController
}

func New(s services.Set) Set {
	return Set{
		Products:   NewProductController(s.Products),
		Categories: NewCategoryController(s.Categories),
		Attributes: NewAttributeController(s.Attributes),
		Orders:     NewOrderController(s.Orders),
		Users:      NewUserController(s.Users),
		Payments:   NewPaymentController(s.Payments),
		Dashboard:  NewDashboardController(s.Dashboard),
	}
}
