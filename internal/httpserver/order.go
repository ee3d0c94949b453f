package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/partify/internal/logging"
	authmw "github.com/Skotchmaster/partify/internal/middleware/auth"
	"github.com/Skotchmaster/partify/internal/service"
	"github.com/Skotchmaster/partify/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func identity(c echo.Context) (authmw.Identity, error) {
	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return authmw.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}
	return id, nil
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	who, err := identity(c)
	if err != nil {
		l.Warn("create_order_failed", "status", 401, "reason", "no identity")
		return err
	}

	var req transport.CreateOrderRequest
	if err := bindOrFail(c, l, "create_order_failed", &req); err != nil {
		return err
	}

	order, err := h.Svc.CreateOrder(ctx, who.UserID, req)
	if err != nil {
		return fail(l, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalPrice)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) Quote(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.quote")

	var req transport.QuoteRequest
	if err := bindOrFail(c, l, "quote_failed", &req); err != nil {
		return err
	}

	q, err := h.Svc.Quote(ctx, req.Items)
	if err != nil {
		return fail(l, "quote_failed", err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_orders")

	who, err := identity(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListOrdersForUser(ctx, who.UserID)
	if err != nil {
		return fail(l, "my_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	who, err := identity(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(ctx, c.Param("id"), who.UserID, who.IsAdmin)
	if err != nil {
		return fail(l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, order)
}
