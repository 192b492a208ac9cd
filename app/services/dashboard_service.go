package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/collection"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type MonthlyPoint struct {
	Month  string `json:"month"`
	Orders int64  `json:"orders"`
	Sales  int64  `json:"sales"`
}

type StatusPoint struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

type Summary struct {
	TotalProducts int64 `json:"totalProducts"`
	TotalOrders   int64 `json:"totalOrders"`
	TotalUsers    int64 `json:"totalUsers"`
}

// DashboardService reads aggregate figures for the admin dashboard. The
// repositories group; zero-filling and labelling happen here.
type DashboardService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	now      Clock
}

func NewDashboardService(orders repositories.OrderRepository, products repositories.ProductRepository, users repositories.UserRepository) *DashboardService {
	return &DashboardService{orders: orders, products: products, users: users, now: nowUTC}
}

// MonthlyOrdersSales returns twelve buckets for the current year with
// sales rounded to whole units.
func (s *DashboardService) MonthlyOrdersSales(ctx context.Context) ([]MonthlyPoint, error) {
	year := s.now().Year()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	totals, err := s.orders.MonthlyTotals(ctx, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	points := make([]MonthlyPoint, 12)
	for i := range points {
		points[i].Month = monthNames[i]
	}
	for _, t := range totals {
		if t.Month < 1 || t.Month > 12 {
			continue
		}
		p := &points[t.Month-1]
		p.Orders = t.Orders
		p.Sales = t.Sales.Round(0).IntPart()
	}
	return points, nil
}

// OrdersByStatus lists every fulfillment status, including empty ones.
func (s *DashboardService) OrdersByStatus(ctx context.Context) ([]StatusPoint, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byStatus := collection.KeyBy(counts, func(c repositories.StatusCount) models.OrderStatus { return c.Status })
	out := collection.Map(models.OrderStatuses, func(st models.OrderStatus) StatusPoint {
		return StatusPoint{Status: st, Count: byStatus[st].Count}
	})
	return out, nil
}

func (s *DashboardService) ProductsByCategory(ctx context.Context) ([]repositories.CategoryCount, error) {
	return s.products.CountByCategory(ctx)
}

// Summary runs the three counts concurrently.
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.TotalProducts, err = s.products.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.TotalOrders, err = s.orders.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.TotalUsers, err = s.users.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sum, nil
}
