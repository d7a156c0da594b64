package orders

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/enums"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, int64, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, int64, error)
	UpdateStatusFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	HasDeliveredOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Stats(ctx context.Context) (StatsDTO, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &gormRepository{db: tx}
}

func (r *gormRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, int64, error) {
	params = pagination.Normalize(params)

	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Preload("OrderItems").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).
		Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *gormRepository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, int64, error) {
	params = pagination.Normalize(params)

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != "" {
		query = query.Where("order_status = ?", filters.Status)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(shipping_email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Preload("OrderItems").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).
		Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *gormRepository) UpdateStatusFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

// HasDeliveredOrderWithProduct reports whether the user completed an order
// containing the product. Used to gate reviews on verified purchases.
func (r *gormRepository) HasDeliveredOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ?", userID).
		Where("order_items.product_id = ?", productID).
		Where("orders.order_status = ?", enums.OrderStatusDelivered).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) Stats(ctx context.Context) (StatsDTO, error) {
	stats := StatsDTO{CountsByStatus: make(map[enums.OrderStatus]int64)}

	type statusCount struct {
		OrderStatus enums.OrderStatus
		Count       int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("order_status, COUNT(*) AS count").
		Group("order_status").
		Scan(&rows).
		Error
	if err != nil {
		return StatsDTO{}, err
	}
	for _, row := range rows {
		stats.CountsByStatus[row.OrderStatus] = row.Count
		stats.TotalOrders += row.Count
	}

	var revenue sql.NullInt64
	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("SUM(total_price)").
		Where("order_status = ?", enums.OrderStatusDelivered).
		Scan(&revenue).
		Error
	if err != nil {
		return StatsDTO{}, err
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Int64
	}

	return stats, nil
}
