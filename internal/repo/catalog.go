package repo

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/partify/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// substringClause is a case-sensitive "column contains ?" test. LIKE is not
// used because SQLite folds ASCII case in LIKE.
func substringClause(q *gorm.DB, column string) string {
	if q.Dialector.Name() == "sqlite" {
		return "instr(" + column + ", ?) > 0"
	}
	return "strpos(" + column + ", ?) > 0"
}

func applyProductFilter(q *gorm.DB, f ProductFilter) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Featured {
		q = q.Where("is_featured = ?", true)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.Make != "" {
		// fitment lists are stored as JSON arrays; a quoted element match is exact.
		quoted, _ := json.Marshal(f.Make)
		q = q.Where(substringClause(q, "compatible_makes"), string(quoted))
	}
	if f.Year != nil {
		q = q.Where(`REPLACE(REPLACE(compatible_years, '[', ','), ']', ',') LIKE ?`, "%,"+strconv.Itoa(*f.Year)+",%")
	}
	if f.Search != "" {
		p := containsPattern(f.Search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(part_number) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`, p, p, p)
	}
	if f.Model != "" {
		p := containsPattern(f.Model)
		q = q.Where(`(LOWER(description) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\')`, p, p)
	}
	return q
}

// ListProducts returns the total match count and one page, newest first.
// A limit of zero returns every match.
func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := applyProductFilter(r.DB.WithContext(ctx).Model(&models.Product{}), f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	q := applyProductFilter(r.DB.WithContext(ctx).Model(&models.Product{}), f).Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	items := make([]models.Product, 0)
	if err := q.Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, gormErr(err)
	}
	return &product, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	items := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return gormErr(r.DB.WithContext(ctx).Create(prod).Error)
}

func (r *GormRepo) UpdateProduct(ctx context.Context, prod *models.Product) error {
	res := r.DB.WithContext(ctx).Model(prod).Select("*").Omit("id", "created_at").Updates(prod)
	if res.Error != nil {
		return gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PartNumberTaken reports whether another product already uses partNumber.
func (r *GormRepo) PartNumberTaken(ctx context.Context, partNumber, exceptID string) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("part_number = ?", partNumber)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}
