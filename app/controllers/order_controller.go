package controllers

import (
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Checkout places a customer order. Signed-in callers get it linked to
// their account.
func (oc *OrderController) Checkout(c *ctx.Context) {
	var in services.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.service.Create(c.Context(), in, middleware.IdentityFromCtx(c.Context()))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(o)
}

func (oc *OrderController) Store(c *ctx.Context) {
	var in services.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.service.AdminCreate(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(o)
}

func (oc *OrderController) Index(c *ctx.Context) {
	os, err := oc.service.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(os)
}

func (oc *OrderController) Mine(c *ctx.Context) {
	os, err := oc.service.ListMine(c.Context(), middleware.IdentityFromCtx(c.Context()))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(os)
}

func (oc *OrderController) Show(c *ctx.Context) {
	o, err := oc.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(o)
}

func (oc *OrderController) Update(c *ctx.Context) {
	var in services.OrderUpdate
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.service.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(o)
}

func (oc *OrderController) Destroy(c *ctx.Context) {
	o, err := oc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Order deleted successfully", o)
}
