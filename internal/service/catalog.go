package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/partify/internal/logging"
	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/repo"
	"github.com/Skotchmaster/partify/internal/transport"
	"github.com/Skotchmaster/partify/internal/util"
)

const (
	allCategories = "All"
	anyModel      = "Select Model"
)

type ProductRepo interface {
	ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	CreateProduct(ctx context.Context, prod *models.Product) error
	UpdateProduct(ctx context.Context, prod *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	PartNumberTaken(ctx context.Context, partNumber, exceptID string) (bool, error)
	CountProducts(ctx context.Context) (int64, error)
}

// ProductIndex is an optional full-text index kept in sync with the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	SearchProductIDs(ctx context.Context, q string, offset, limit int) (int64, []string, error)
}

type CatalogService struct {
	Repo   ProductRepo
	Index  ProductIndex
	Events EventPublisher
}

func productFilter(q transport.ProductQuery) (repo.ProductFilter, error) {
	f := repo.ProductFilter{
		Search: strings.TrimSpace(q.Search),
		Make:   strings.TrimSpace(q.Make),
	}
	if c := strings.TrimSpace(q.Category); c != "" && c != allCategories {
		f.Category = c
	}
	if m := strings.TrimSpace(q.Model); m != "" && m != anyModel {
		f.Model = m
	}
	f.Featured = q.Featured == "true"

	if q.IDs != "" {
		for _, id := range strings.Split(q.IDs, ",") {
			id = strings.TrimSpace(id)
			if _, err := uuid.Parse(id); err == nil {
				f.IDs = append(f.IDs, id)
			}
		}
	}

	if y := strings.TrimSpace(q.Year); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return f, validationf("invalid year %q", y)
		}
		f.Year = &year
	}
	return f, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q transport.ProductQuery) (*transport.ProductPage, error) {
	f, err := productFilter(q)
	if err != nil {
		return nil, err
	}

	page := max(q.Page, 1)
	offset, limit := util.Calculate(page, q.Limit)

	total, items, err := s.Repo.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{
		Products: normalizeProducts(items),
		Total:    total,
		Page:     page,
		Pages:    util.Pages(total, limit),
	}, nil
}

// SearchProducts uses the full-text index when configured and falls back to
// the store substring search otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (*transport.ProductPage, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, validationf("query is required")
	}
	if s.Index == nil {
		return s.ListProducts(ctx, transport.ProductQuery{Search: q, Page: page, Limit: size})
	}

	page = max(page, 1)
	offset, limit := util.Calculate(page, size)

	total, ids, err := s.Index.SearchProductIDs(ctx, q, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "error", err)
		return s.ListProducts(ctx, transport.ProductQuery{Search: q, Page: page, Limit: size})
	}

	found, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	items := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}

	return &transport.ProductPage{
		Products: normalizeProducts(items),
		Total:    total,
		Page:     page,
		Pages:    util.Pages(total, limit),
	}, nil
}

// ListAllProducts returns the whole catalog newest first for the back office.
func (s *CatalogService) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	_, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{}, 0, 0)
	if err != nil {
		return nil, err
	}
	return normalizeProducts(items), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, err
	}
	normalizeProduct(p)
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Price == nil {
		return nil, validationf("price is required")
	}

	p := &models.Product{
		Name:            strings.TrimSpace(req.Name),
		PartNumber:      strings.TrimSpace(req.PartNumber),
		Category:        models.Category(req.Category),
		Price:           *req.Price,
		OriginalPrice:   req.OriginalPrice,
		Description:     req.Description,
		Image:           req.Image,
		Rating:          models.DefaultRating,
		CompatibleMakes: req.CompatibleMakes,
		CompatibleYears: req.CompatibleYears,
		IsFeatured:      req.IsFeatured,
		Badge:           req.Badge,
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Rating != nil {
		p.Rating = *req.Rating
	}
	if req.NumReviews != nil {
		p.NumReviews = *req.NumReviews
	}

	if err := s.validateProduct(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, validationf("part number %q already exists", p.PartNumber)
		}
		return nil, err
	}

	s.syncIndex(ctx, *p)
	publish(ctx, s.Events, TopicProductEvents, p.ID, map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
	})
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req transport.UpdateProductRequest) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.PartNumber != nil {
		p.PartNumber = strings.TrimSpace(*req.PartNumber)
	}
	if req.Category != nil {
		p.Category = models.Category(*req.Category)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.OriginalPrice.Set {
		p.OriginalPrice = req.OriginalPrice.Value
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Rating != nil {
		p.Rating = *req.Rating
	}
	if req.NumReviews != nil {
		p.NumReviews = *req.NumReviews
	}
	if req.CompatibleMakes != nil {
		p.CompatibleMakes = *req.CompatibleMakes
	}
	if req.CompatibleYears != nil {
		p.CompatibleYears = *req.CompatibleYears
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}
	if req.Badge != nil {
		p.Badge = req.Badge
	}

	if err := s.validateProduct(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateProduct(ctx, p); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, notFound("Product not found")
		case errors.Is(err, repo.ErrDuplicate):
			return nil, validationf("part number %q already exists", p.PartNumber)
		}
		return nil, err
	}

	s.syncIndex(ctx, *p)
	publish(ctx, s.Events, TopicProductEvents, p.ID, map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
		"name":      p.Name,
	})
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Product not found")
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, TopicProductEvents, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) syncIndex(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_update_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) validateProduct(ctx context.Context, p *models.Product) error {
	switch {
	case p.Name == "":
		return validationf("name is required")
	case p.PartNumber == "":
		return validationf("partNumber is required")
	case !p.Category.Valid():
		return validationf("category %q is not one of the catalog categories", p.Category)
	case p.Price < 0:
		return validationf("price must be >= 0")
	case p.OriginalPrice != nil && *p.OriginalPrice < 0:
		return validationf("originalPrice must be >= 0")
	case strings.TrimSpace(p.Description) == "":
		return validationf("description is required")
	case strings.TrimSpace(p.Image) == "":
		return validationf("image is required")
	case p.Stock < 0:
		return validationf("stock must be >= 0")
	case p.Rating < 0 || p.Rating > 5:
		return validationf("rating must be between 0 and 5")
	case p.NumReviews < 0:
		return validationf("numReviews must be >= 0")
	}
	for _, y := range p.CompatibleYears {
		if y <= 0 {
			return validationf("compatibleYears must be positive")
		}
	}
	makes := make([]string, 0, len(p.CompatibleMakes))
	for _, m := range p.CompatibleMakes {
		if m = strings.TrimSpace(m); m != "" {
			makes = append(makes, m)
		}
	}
	p.CompatibleMakes = makes
	normalizeProduct(p)
	if p.Badge != nil && strings.TrimSpace(*p.Badge) == "" {
		p.Badge = nil
	}

	taken, err := s.Repo.PartNumberTaken(ctx, p.PartNumber, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return validationf("part number %q already exists", p.PartNumber)
	}
	return nil
}

func normalizeProduct(p *models.Product) {
	if p.CompatibleMakes == nil {
		p.CompatibleMakes = []string{}
	}
	if p.CompatibleYears == nil {
		p.CompatibleYears = []int{}
	}
}

func normalizeProducts(items []models.Product) []models.Product {
	if items == nil {
		return []models.Product{}
	}
	for i := range items {
		normalizeProduct(&items[i])
	}
	return items
}
