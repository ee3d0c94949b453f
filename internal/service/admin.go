package service

import (
	"context"

	"github.com/Skotchmaster/partify/internal/transport"
)

const recentOrdersLimit = 5

type AdminService struct {
	Products ProductRepo
	Orders   OrderRepo
	Users    UserRepo
	Events   EventPublisher
}

// GetStats recomputes the dashboard figures on every call.
func (s *AdminService) GetStats(ctx context.Context) (*transport.Stats, error) {
	productCount, err := s.Products.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	orderCount, err := s.Orders.CountOrders(ctx)
	if err != nil {
		return nil, err
	}
	userCount, err := s.Users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.Orders.DeliveredRevenue(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.Orders.ListOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}
	if err := attachCustomers(ctx, s.Users, recent); err != nil {
		return nil, err
	}

	return &transport.Stats{
		ProductCount: productCount,
		OrderCount:   orderCount,
		UserCount:    userCount,
		Revenue:      revenue,
		RecentOrders: recent,
	}, nil
}

// ResetRevenue moves every delivered order back to Pending.
func (s *AdminService) ResetRevenue(ctx context.Context) (int64, error) {
	n, err := s.Orders.ResetDeliveredOrders(ctx)
	if err != nil {
		return 0, err
	}
	publish(ctx, s.Events, TopicOrderEvents, "revenue", map[string]any{
		"type":   "revenue_reset",
		"orders": n,
	})
	return n, nil
}
