package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/partify/internal/logging"
	"github.com/Skotchmaster/partify/internal/service"
	"github.com/Skotchmaster/partify/internal/transport"
	"github.com/Skotchmaster/partify/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func productQuery(c echo.Context) transport.ProductQuery {
	return transport.ProductQuery{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		IDs:      c.QueryParam("ids"),
		Make:     c.QueryParam("make"),
		Model:    c.QueryParam("model"),
		Year:     c.QueryParam("year"),
		Featured: c.QueryParam("featured"),
		Page:     util.ParseIntDefault(c.QueryParam("page"), 1),
		Limit:    util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
	}
}

// GetProducts lists the catalog page by page. limit defaults to 20 and is
// capped at 100; a missing or malformed page or limit falls back to its default.
func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page, err := h.Svc.ListProducts(ctx, productQuery(c))
	if err != nil {
		return fail(l, "get_products_failed", err)
	}

	l.Info("get_products_success", "total", page.Total)
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, limit)
	if err != nil {
		return fail(l, "search_products_failed", err)
	}

	l.Info("search_products_success", "total", res.Total)
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	product, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := bindOrFail(c, l, "create_product_failed", &req); err != nil {
		return err
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product_failed", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	var req transport.UpdateProductRequest
	if err := bindOrFail(c, l, "update_product_failed", &req); err != nil {
		return err
	}

	product, err := h.Svc.UpdateProduct(ctx, c.Param("id"), req)
	if err != nil {
		return fail(l, "update_product_failed", err)
	}

	l.Info("update_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) deleteProduct(c echo.Context, message string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id := c.Param("id")
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product_failed", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: message})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	return h.deleteProduct(c, "Product removed")
}
