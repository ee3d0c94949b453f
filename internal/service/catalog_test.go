package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/repo"
	"github.com/Skotchmaster/partify/internal/transport"
)

func ptr[T any](v T) *T { return &v }

func validProduct(name, partNumber string, category models.Category) transport.CreateProductRequest {
	return transport.CreateProductRequest{
		Name:        name,
		PartNumber:  partNumber,
		Category:    string(category),
		Price:       ptr(49.99),
		Description: name + " for daily drivers",
		Image:       "/images/" + partNumber + ".png",
		Stock:       ptr(10),
	}
}

func newTestCatalog(t *testing.T) (*CatalogService, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	return &CatalogService{Repo: newTestRepo(t), Events: pub}, pub
}

func TestCatalogService_CreateProduct_Defaults(t *testing.T) {
	t.Parallel()

	svc, pub := newTestCatalog(t)
	req := validProduct("  Ceramic Brake Pads ", "BP-100", models.CategoryBrakes)
	req.Stock = nil
	req.Badge = ptr("")

	p, err := svc.CreateProduct(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Ceramic Brake Pads", p.Name)
	assert.Equal(t, models.DefaultRating, p.Rating)
	assert.Zero(t, p.Stock)
	assert.Zero(t, p.NumReviews)
	assert.False(t, p.IsFeatured)
	assert.Nil(t, p.Badge)
	assert.Equal(t, []string{}, p.CompatibleMakes)
	assert.Equal(t, []string{"product_created"}, pub.types())
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	_, err := svc.CreateProduct(ctx, validProduct("Existing", "DUP-1", models.CategoryBody))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(r *transport.CreateProductRequest)
	}{
		{name: "missing name", mutate: func(r *transport.CreateProductRequest) { r.Name = "  " }},
		{name: "missing part number", mutate: func(r *transport.CreateProductRequest) { r.PartNumber = "" }},
		{name: "unknown category", mutate: func(r *transport.CreateProductRequest) { r.Category = "Tires" }},
		{name: "missing price", mutate: func(r *transport.CreateProductRequest) { r.Price = nil }},
		{name: "negative price", mutate: func(r *transport.CreateProductRequest) { r.Price = ptr(-1.0) }},
		{name: "negative original price", mutate: func(r *transport.CreateProductRequest) { r.OriginalPrice = ptr(-5.0) }},
		{name: "missing description", mutate: func(r *transport.CreateProductRequest) { r.Description = "" }},
		{name: "missing image", mutate: func(r *transport.CreateProductRequest) { r.Image = "" }},
		{name: "negative stock", mutate: func(r *transport.CreateProductRequest) { r.Stock = ptr(-1) }},
		{name: "rating above five", mutate: func(r *transport.CreateProductRequest) { r.Rating = ptr(5.5) }},
		{name: "rating below zero", mutate: func(r *transport.CreateProductRequest) { r.Rating = ptr(-0.1) }},
		{name: "negative reviews", mutate: func(r *transport.CreateProductRequest) { r.NumReviews = ptr(-2) }},
		{name: "bad year", mutate: func(r *transport.CreateProductRequest) { r.CompatibleYears = []int{2019, 0} }},
		{name: "duplicate part number", mutate: func(r *transport.CreateProductRequest) { r.PartNumber = "DUP-1" }},
	}

	for _, tt := range tests {
		req := validProduct("Widget", "W-1", models.CategoryAccessories)
		tt.mutate(&req)
		_, err := svc.CreateProduct(ctx, req)
		require.Error(t, err, tt.name)
		assert.ErrorIs(t, err, ErrValidation, tt.name)
	}
}

func seedCatalog(t *testing.T, svc *CatalogService) map[string]*models.Product {
	t.Helper()
	ctx := context.Background()

	reqs := []transport.CreateProductRequest{
		validProduct("Ceramic Brake Pads", "BP-100", models.CategoryBrakes),
		validProduct("Brake Rotor", "RT-PAD-2", models.CategoryBrakes),
		validProduct("Brake Caliper", "CL-3", models.CategoryBrakes),
		validProduct("Cabin Filter Pad", "FL-4", models.CategoryFilters),
		validProduct("LED Headlight", "HL-5", models.CategoryLighting),
	}
	reqs[0].CompatibleMakes = []string{"Toyota"}
	reqs[0].CompatibleYears = []int{2018, 2019}
	reqs[0].Description = "Fits Camry"
	reqs[4].IsFeatured = true

	out := make(map[string]*models.Product)
	for i, r := range reqs {
		p, err := svc.CreateProduct(ctx, r)
		require.NoError(t, err)
		// created_at drives ordering; keep it strictly increasing.
		setCreatedAt(t, svc.Repo.(*repo.GormRepo), &models.Product{}, p.ID, time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC))
		out[p.PartNumber] = p
	}
	return out
}

func productNames(page *transport.ProductPage) []string {
	out := make([]string, 0, len(page.Products))
	for _, p := range page.Products {
		out = append(out, p.Name)
	}
	return out
}

func TestCatalogService_ListProducts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestCatalog(t)
	seeded := seedCatalog(t, svc)
	ctx := context.Background()

	tests := []struct {
		name  string
		query transport.ProductQuery
		want  []string
	}{
		{name: "category and search", query: transport.ProductQuery{Category: "Brakes", Search: "pad"}, want: []string{"Brake Rotor", "Ceramic Brake Pads"}},
		{name: "category All is ignored", query: transport.ProductQuery{Category: "All", Search: "PAD"}, want: []string{"Cabin Filter Pad", "Brake Rotor", "Ceramic Brake Pads"}},
		{name: "featured", query: transport.ProductQuery{Featured: "true"}, want: []string{"LED Headlight"}},
		{name: "fitment", query: transport.ProductQuery{Make: "Toyota", Year: "2019", Model: "camry"}, want: []string{"Ceramic Brake Pads"}},
		{name: "placeholder model is ignored", query: transport.ProductQuery{Model: "Select Model", Category: "Lighting"}, want: []string{"LED Headlight"}},
		{name: "invalid ids are dropped", query: transport.ProductQuery{IDs: seeded["CL-3"].ID + ",nope, " + seeded["HL-5"].ID}, want: []string{"LED Headlight", "Brake Caliper"}},
		{name: "only invalid ids means no id filter", query: transport.ProductQuery{IDs: "nope", Category: "Filters"}, want: []string{"Cabin Filter Pad"}},
	}

	for _, tt := range tests {
		page, err := svc.ListProducts(ctx, tt.query)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, productNames(page), tt.name)
		assert.EqualValues(t, len(tt.want), page.Total, tt.name)
	}
}

func TestCatalogService_ListProducts_Pagination(t *testing.T) {
	t.Parallel()

	svc, _ := newTestCatalog(t)
	seedCatalog(t, svc)

	page, err := svc.ListProducts(context.Background(), transport.ProductQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, []string{"Brake Caliper", "Brake Rotor"}, productNames(page))

	page, err = svc.ListProducts(context.Background(), transport.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Pages)

	_, err = svc.ListProducts(context.Background(), transport.ProductQuery{Year: "twenty"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	svc, pub := newTestCatalog(t)
	ctx := context.Background()
	seeded := seedCatalog(t, svc)
	pads := seeded["BP-100"]

	updated, err := svc.UpdateProduct(ctx, pads.ID, transport.UpdateProductRequest{
		Price:      ptr(39.5),
		Badge:      ptr("HOT DEAL"),
		IsFeatured: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 39.5, updated.Price)
	assert.Equal(t, "Ceramic Brake Pads", updated.Name)
	require.NotNil(t, updated.Badge)
	assert.Equal(t, "HOT DEAL", *updated.Badge)
	assert.Equal(t, []string{"Toyota"}, updated.CompatibleMakes)

	updated, err = svc.UpdateProduct(ctx, pads.ID, transport.UpdateProductRequest{
		OriginalPrice: transport.NullableFloat{Set: true, Value: ptr(59.0)},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.OriginalPrice)
	assert.Equal(t, 59.0, *updated.OriginalPrice)

	updated, err = svc.UpdateProduct(ctx, pads.ID, transport.UpdateProductRequest{
		OriginalPrice: transport.NullableFloat{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.OriginalPrice)

	_, err = svc.UpdateProduct(ctx, pads.ID, transport.UpdateProductRequest{PartNumber: ptr("CL-3")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProduct(ctx, pads.ID, transport.UpdateProductRequest{Category: ptr("Wheels")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProduct(ctx, models.NewID(), transport.UpdateProductRequest{Price: ptr(1.0)})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, pads.ID))
	_, err = svc.GetProduct(ctx, pads.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "Product not found", svcErr.Msg)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, pads.ID), ErrNotFound)
	assert.Contains(t, pub.types(), "product_updated")
	assert.Contains(t, pub.types(), "product_deleted")
}

type fakeIndex struct {
	ids     []string
	err     error
	indexed []string
	deleted []string
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchProductIDs(_ context.Context, _ string, _, _ int) (int64, []string, error) {
	return int64(len(f.ids)), f.ids, f.err
}

func TestCatalogService_SearchProducts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestCatalog(t)
	seeded := seedCatalog(t, svc)
	ctx := context.Background()

	_, err := svc.SearchProducts(ctx, "  ", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)

	page, err := svc.SearchProducts(ctx, "caliper", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brake Caliper"}, productNames(page))

	idx := &fakeIndex{ids: []string{seeded["HL-5"].ID, models.NewID(), seeded["BP-100"].ID}}
	svc.Index = idx
	page, err = svc.SearchProducts(ctx, "headlite", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"LED Headlight", "Ceramic Brake Pads"}, productNames(page))

	idx.err = errors.New("cluster down")
	page, err = svc.SearchProducts(ctx, "rotor", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brake Rotor"}, productNames(page))

	_, err = svc.CreateProduct(ctx, validProduct("Muffler", "EX-9", models.CategoryExhaust))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, seeded["CL-3"].ID))
	assert.Len(t, idx.indexed, 1)
	assert.Equal(t, []string{seeded["CL-3"].ID}, idx.deleted)
}

func TestCatalogService_EventsDoNotFailRequests(t *testing.T) {
	t.Parallel()

	svc, pub := newTestCatalog(t)
	pub.err = errors.New("broker unavailable")

	_, err := svc.CreateProduct(context.Background(), validProduct("Spark Plug", "SP-1", models.CategoryEngines))
	require.NoError(t, err)
}
