package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/partify/internal/logging"
	"github.com/Skotchmaster/partify/internal/service"
	"github.com/Skotchmaster/partify/internal/transport"
)

type AdminHTTP struct {
	Admin   *service.AdminService
	Catalog *CatalogHTTP
	Orders  *service.OrderService
	Users   *service.UserService
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	stats, err := h.Admin.GetStats(ctx)
	if err != nil {
		return fail(l, "get_stats_failed", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHTTP) ResetRevenue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.reset_revenue")

	n, err := h.Admin.ResetRevenue(ctx)
	if err != nil {
		return fail(l, "reset_revenue_failed", err)
	}

	l.Info("reset_revenue_success", "orders", n)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Revenue cleared"})
}

func (h *AdminHTTP) Products(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products")

	items, err := h.Catalog.Svc.ListAllProducts(ctx)
	if err != nil {
		return fail(l, "list_products_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	return h.Catalog.deleteProduct(c, "Product deleted")
}

func (h *AdminHTTP) OrdersList(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders")

	orders, err := h.Orders.ListAllOrders(ctx)
	if err != nil {
		return fail(l, "list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	var req transport.UpdateOrderStatusRequest
	if err := bindOrFail(c, l, "update_order_status_failed", &req); err != nil {
		return err
	}

	order, err := h.Orders.SetOrderStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		return fail(l, "update_order_status_failed", err)
	}

	l.Info("update_order_status_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) UsersList(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users")

	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) ToggleAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.toggle_admin")

	user, err := h.Users.ToggleAdmin(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "toggle_admin_failed", err)
	}

	l.Info("toggle_admin_success", "user_id", user.ID, "is_admin", user.IsAdmin)
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_user")

	who, err := identity(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.Users.DeleteUser(ctx, id, who.UserID); err != nil {
		return fail(l, "delete_user_failed", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "User deleted"})
}
