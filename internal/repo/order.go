package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/partify/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return gormErr(r.DB.WithContext(ctx).Create(order).Error)
}

func (r *GormRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, gormErr(err)
	}
	return &order, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders returns orders newest first; limit zero means all of them.
func (r *GormRepo) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	orders := make([]models.Order, 0)
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus overwrites the status. A non-nil deliveredAt also marks
// the order delivered.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, deliveredAt *time.Time) error {
	updates := map[string]any{"status": status}
	if deliveredAt != nil {
		updates["is_delivered"] = true
		updates["delivered_at"] = *deliveredAt
	}
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ResetDeliveredOrders(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", models.StatusDelivered).
		Updates(map[string]any{
			"status":       models.StatusPending,
			"is_delivered": false,
			"delivered_at": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

func (r *GormRepo) DeliveredRevenue(ctx context.Context) (float64, error) {
	var revenue float64
	row := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", models.StatusDelivered).
		Select("COALESCE(SUM(total_price), 0)").
		Row()
	if err := row.Scan(&revenue); err != nil {
		return 0, err
	}
	return revenue, nil
}
