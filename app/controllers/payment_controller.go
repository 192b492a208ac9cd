package controllers

import (
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

// SignatureHeader carries the provider's webhook signature.
const SignatureHeader = "Stripe-Signature"

type PaymentController struct {
	service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

func (pc *PaymentController) CreateIntent(c *ctx.Context) {
	var in services.IntentRequest
	if !c.BindJSON(&in) {
		return
	}
	res, err := pc.service.CreateIntent(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

func (pc *PaymentController) Confirm(c *ctx.Context) {
	var in services.ConfirmRequest
	if !c.BindJSON(&in) {
		return
	}
	o, err := pc.service.Confirm(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Payment confirmed successfully", o)
}

// Webhook must see the raw body; signature verification covers its bytes.
func (pc *PaymentController) Webhook(c *ctx.Context) {
	payload, err := c.Body()
	if err != nil {
		c.Fail(apperr.Validation("Webhook Error: " + err.Error()))
		return
	}
	if err := pc.service.HandleWebhook(c.Context(), payload, c.Header(SignatureHeader)); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"received": true})
}
