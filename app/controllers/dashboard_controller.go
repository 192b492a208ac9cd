package controllers

import (
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type DashboardController struct {
	service *services.DashboardService
}

func NewDashboardController(service *services.DashboardService) *DashboardController {
	return &DashboardController{service: service}
}

func (dc *DashboardController) MonthlyOrdersSales(c *ctx.Context) {
	points, err := dc.service.MonthlyOrdersSales(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(points)
}

func (dc *DashboardController) OrdersByStatus(c *ctx.Context) {
	points, err := dc.service.OrdersByStatus(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(points)
}

func (dc *DashboardController) ProductsByCategory(c *ctx.Context) {
	counts, err := dc.service.ProductsByCategory(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(counts)
}

func (dc *DashboardController) Summary(c *ctx.Context) {
	sum, err := dc.service.Summary(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(sum)
}
