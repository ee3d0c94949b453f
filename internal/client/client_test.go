package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/partify/internal/db"
	"github.com/Skotchmaster/partify/internal/httpserver"
	authmw "github.com/Skotchmaster/partify/internal/middleware/auth"
	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/repo"
	"github.com/Skotchmaster/partify/internal/service"
	"github.com/Skotchmaster/partify/internal/storefront/cart"
	"github.com/Skotchmaster/partify/internal/storefront/checkout"
	"github.com/Skotchmaster/partify/internal/storefront/history"
	"github.com/Skotchmaster/partify/internal/transport"
)

var _ checkout.OrderPlacer = (*Client)(nil)

func TestClient_ErrorResponses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/missing":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Product not found"}`))
		case "/api/orders/myorders":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL + "/")
	ctx := context.Background()

	_, err := c.GetProduct(ctx, "missing")
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusNotFound, ae.Status)
	assert.Equal(t, "Product not found", ae.Message)

	_, err = c.MyOrders(ctx)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "upstream down", ae.Message)

	_, err = c.GetOrder(ctx, "x")
	assert.True(t, IsStatus(err, http.StatusTeapot))
}

func TestClient_RequestShape(t *testing.T) {
	t.Parallel()

	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(transport.ProductPage{Page: 2, Pages: 3})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, WithToken("tok"))
	page, err := c.ListProducts(context.Background(), transport.ProductQuery{
		Category: "Brakes",
		Make:     "Toyota",
		Page:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pages)

	require.NotNil(t, got)
	assert.Equal(t, "/api/products", got.URL.Path)
	assert.Equal(t, "Brakes", got.URL.Query().Get("category"))
	assert.Equal(t, "Toyota", got.URL.Query().Get("make"))
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.False(t, got.URL.Query().Has("limit"))
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
}

func newAPIServer(t *testing.T) (*httptest.Server, *repo.GormRepo) {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	r := &repo.GormRepo{DB: gdb}

	secret := []byte("client-secret")
	catalog := &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r}}
	orders := &service.OrderService{Orders: r, Users: r, Products: r, PricePolicy: service.PricePolicyVerify}
	users := &service.UserService{Repo: r, JWTSecret: secret, TokenTTL: time.Hour}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: catalog,
		OrderHandler:   &httpserver.OrderHTTP{Svc: orders},
		AuthHandler:    &httpserver.AuthHTTP{Svc: users},
		AdminHandler: &httpserver.AdminHTTP{
			Admin:   &service.AdminService{Products: r, Orders: r, Users: r},
			Catalog: catalog,
			Orders:  orders,
			Users:   users,
		},
		Auth:  authmw.New(secret, r),
		Ready: r.Ping,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, r
}

func TestClient_CheckoutEndToEnd(t *testing.T) {
	t.Parallel()

	srv, r := newAPIServer(t)
	ctx := context.Background()

	seed := &models.Product{
		Name:        "Ceramic Brake Pads",
		PartNumber:  "BP-100",
		Category:    models.CategoryBrakes,
		Price:       49.99,
		Description: "Front axle",
		Image:       "/images/bp.png",
		Stock:       5,
		Rating:      models.DefaultRating,
	}
	require.NoError(t, r.CreateProduct(ctx, seed))

	c := New(srv.URL)

	_, err := c.MyOrders(ctx)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	reg, err := c.Register(ctx, "Lee Park", "lee@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Token())

	page, err := c.ListProducts(ctx, transport.ProductQuery{Category: string(models.CategoryBrakes)})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)

	p, err := c.GetProduct(ctx, page.Products[0].ID)
	require.NoError(t, err)

	hist := history.Parse("")
	flow, err := checkout.Start(
		&checkout.Identity{UserID: reg.ID, Name: reg.Name, Email: reg.Email},
		cart.New().Add(*p, 2),
		c,
		hist,
	)
	require.NoError(t, err)

	require.NoError(t, flow.SubmitAddress(checkout.AddressForm{
		FullName: "Lee Park",
		Phone:    "+1 555 0100",
		Street:   "12 Elm St",
		City:     "Austin",
		State:    "TX",
		Zip:      "73301",
		Country:  "US",
	}))
	require.NoError(t, flow.ConfirmLocation())

	order, err := flow.Place(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 120.97, order.TotalPrice)
	assert.Equal(t, []string{p.ID}, hist.IDs())

	mine, err := c.MyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	got, err := c.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	other := New(srv.URL)
	_, err = other.Register(ctx, "Sam", "sam@example.com", "secret1")
	require.NoError(t, err)
	_, err = other.GetOrder(ctx, order.ID)
	assert.True(t, IsStatus(err, http.StatusForbidden))
}

func TestClient_LoginFailure(t *testing.T) {
	t.Parallel()

	srv, _ := newAPIServer(t)
	c := New(srv.URL)

	_, err := c.Login(context.Background(), "nobody@example.com", "secret1")
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Empty(t, c.Token())
}
