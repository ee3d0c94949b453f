package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/partify/internal/logging"
	authmw "github.com/Skotchmaster/partify/internal/middleware/auth"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	AuthHandler    *AuthHTTP
	AdminHandler   *AdminHTTP

	Auth *authmw.Authenticator

	// Ready reports whether the store answers; nil means always ready.
	Ready   func(ctx context.Context) error
	Metrics echo.HandlerFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics)
	}

	api := e.Group("/api")

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, d.Auth.RequireAdmin)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, d.Auth.RequireAdmin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, d.Auth.RequireAdmin)

	orders := api.Group("/orders")
	orders.POST("/quote", d.OrderHandler.Quote)
	orders.POST("", d.OrderHandler.CreateOrder, d.Auth.RequireAuth)
	orders.GET("/myorders", d.OrderHandler.MyOrders, d.Auth.RequireAuth)
	orders.GET("/:id", d.OrderHandler.GetOrder, d.Auth.RequireAuth)

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/me", d.AuthHandler.Me, d.Auth.RequireAuth)

	admin := api.Group("/admin", d.Auth.RequireAdmin)
	admin.GET("/stats", d.AdminHandler.Stats)
	admin.POST("/reset-revenue", d.AdminHandler.ResetRevenue)
	admin.GET("/products", d.AdminHandler.Products)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PUT("/products/:id", d.CatalogHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.AdminHandler.DeleteProduct)
	admin.GET("/orders", d.AdminHandler.OrdersList)
	admin.PUT("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.GET("/users", d.AdminHandler.UsersList)
	admin.PUT("/users/:id/toggle-admin", d.AdminHandler.ToggleAdmin)
	admin.DELETE("/users/:id", d.AdminHandler.DeleteUser)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Ready == nil {
		return c.NoContent(http.StatusOK)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := d.Ready(ctx); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
