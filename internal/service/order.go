package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/Skotchmaster/partify/internal/metrics"
	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/pricing"
	"github.com/Skotchmaster/partify/internal/repo"
	"github.com/Skotchmaster/partify/internal/transport"
)

const (
	PricePolicyTrust  = "trust"
	PricePolicyVerify = "verify"
)

type OrderRepo interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, deliveredAt *time.Time) error
	ResetDeliveredOrders(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	DeliveredRevenue(ctx context.Context) (float64, error)
}

type UserDirectory interface {
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type ProductLookup interface {
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

// statusTransitions is the lifecycle enforced when strict status checks are on.
var statusTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:    {models.StatusDelivered},
}

func CanTransition(from, to models.OrderStatus) bool {
	return from == to || slices.Contains(statusTransitions[from], to)
}

type OrderService struct {
	Orders   OrderRepo
	Users    UserDirectory
	Products ProductLookup
	Events   EventPublisher
	Metrics  *metrics.Collector

	PricePolicy  string
	StrictStatus bool

	Now func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func validateOrderRequest(req transport.CreateOrderRequest) error {
	if len(req.OrderItems) == 0 {
		return validationf("No order items")
	}
	for i, it := range req.OrderItems {
		switch {
		case strings.TrimSpace(it.Product) == "":
			return validationf("orderItems[%d]: product is required", i)
		case strings.TrimSpace(it.Name) == "":
			return validationf("orderItems[%d]: name is required", i)
		case it.Qty < 1:
			return validationf("orderItems[%d]: qty must be >= 1", i)
		case it.Price < 0:
			return validationf("orderItems[%d]: price must be >= 0", i)
		}
	}

	a := req.ShippingAddress
	fields := []struct{ name, value string }{
		{"street", a.Street}, {"city", a.City}, {"state", a.State}, {"zip", a.Zip}, {"country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return validationf("shippingAddress.%s is required", f.name)
		}
	}

	if req.PaymentMethod != "" && req.PaymentMethod != models.PaymentCashOnDelivery {
		return validationf("unsupported payment method %q", req.PaymentMethod)
	}
	if req.ItemsPrice < 0 || req.ShippingPrice < 0 || req.TaxPrice < 0 || req.TotalPrice < 0 {
		return validationf("prices must be >= 0")
	}
	return nil
}

// CreateOrder persists the order with the submitted prices. Under the verify
// policy the prices are first recomputed from the current catalog.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req transport.CreateOrderRequest) (*models.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	if s.PricePolicy == PricePolicyVerify {
		lines := make([]transport.QuoteItem, 0, len(req.OrderItems))
		for _, it := range req.OrderItems {
			lines = append(lines, transport.QuoteItem{Product: it.Product, Qty: it.Qty})
		}
		want, err := s.Quote(ctx, lines)
		if err != nil {
			return nil, err
		}
		got := pricing.Quote{
			ItemsPrice:    req.ItemsPrice,
			ShippingPrice: req.ShippingPrice,
			TaxPrice:      req.TaxPrice,
			TotalPrice:    req.TotalPrice,
		}
		if !want.Matches(got) {
			return nil, validationf("order totals do not match current prices")
		}
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		items = append(items, models.OrderItem{
			Product: it.Product,
			Name:    it.Name,
			Image:   it.Image,
			Price:   it.Price,
			Qty:     it.Qty,
		})
	}

	order := &models.Order{
		UserID: userID,
		Items:  items,
		ShippingAddress: models.ShippingAddress{
			Street:  req.ShippingAddress.Street,
			City:    req.ShippingAddress.City,
			State:   req.ShippingAddress.State,
			Zip:     req.ShippingAddress.Zip,
			Country: req.ShippingAddress.Country,
		},
		PaymentMethod: models.PaymentCashOnDelivery,
		ItemsPrice:    req.ItemsPrice,
		ShippingPrice: req.ShippingPrice,
		TaxPrice:      req.TaxPrice,
		TotalPrice:    req.TotalPrice,
		Status:        models.StatusPending,
	}
	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.Metrics.OrderPlaced(order.TotalPrice)
	publish(ctx, s.Events, TopicOrderEvents, order.ID, map[string]any{
		"type":       "order_created",
		"orderID":    order.ID,
		"userID":     userID,
		"items":      len(order.Items),
		"totalPrice": order.TotalPrice,
	})
	return order, nil
}

// Quote prices the given items from the current catalog.
func (s *OrderService) Quote(ctx context.Context, items []transport.QuoteItem) (pricing.Quote, error) {
	if len(items) == 0 {
		return pricing.Quote{}, validationf("No order items")
	}

	ids := make([]string, 0, len(items))
	for i, it := range items {
		if it.Qty < 1 {
			return pricing.Quote{}, validationf("items[%d]: qty must be >= 1", i)
		}
		ids = append(ids, it.Product)
	}

	products, err := s.Products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return pricing.Quote{}, err
	}
	prices := make(map[string]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		price, ok := prices[it.Product]
		if !ok {
			return pricing.Quote{}, validationf("product %s not found", it.Product)
		}
		lines = append(lines, pricing.Line{Price: price, Qty: it.Qty})
	}
	return pricing.ForLines(lines), nil
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.Orders.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.Orders.ListOrders(ctx, 0)
	if err != nil {
		return nil, err
	}
	if err := attachCustomers(ctx, s.Users, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) getOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("Order not found")
		}
		return nil, err
	}
	return order, nil
}

// GetOrder returns the order to its owner or to an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID string, requesterIsAdmin bool) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && !requesterIsAdmin {
		return nil, &Error{Kind: ErrForbidden, Msg: "Not authorized"}
	}

	orders := []models.Order{*order}
	if err := attachCustomers(ctx, s.Users, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (s *OrderService) SetOrderStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, validationf("status %q is not a valid order status", status)
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	prev := order.Status
	if s.StrictStatus && !CanTransition(prev, next) {
		return nil, validationf("cannot change order status from %s to %s", prev, next)
	}

	var deliveredAt *time.Time
	if next == models.StatusDelivered {
		t := s.now()
		deliveredAt = &t
	}
	if err := s.Orders.UpdateOrderStatus(ctx, orderID, next, deliveredAt); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("Order not found")
		}
		return nil, err
	}

	order, err = s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, TopicOrderEvents, orderID, map[string]any{
		"type":    "order_status_changed",
		"orderID": orderID,
		"from":    prev,
		"to":      next,
	})

	orders := []models.Order{*order}
	if err := attachCustomers(ctx, s.Users, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func attachCustomers(ctx context.Context, users UserDirectory, orders []models.Order) error {
	if users == nil || len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if !slices.Contains(ids, o.UserID) {
			ids = append(ids, o.UserID)
		}
	}
	found, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	for i := range orders {
		if u, ok := byID[orders[i].UserID]; ok {
			orders[i].Customer = u.AsCustomer()
		}
	}
	return nil
}
