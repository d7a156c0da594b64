package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/enums"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// UserWithOrderCount is a listing row joined with the account's order total.
type UserWithOrderCount struct {
	models.User
	OrderCount int64
}

// Repository defines persistence operations for accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]UserWithOrderCount, int64, error)
	CountOrders(ctx context.Context, userID uuid.UUID) (int64, error)
	Stats(ctx context.Context, monthStart time.Time) (UserStatsDTO, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs a user repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *gormRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]UserWithOrderCount, int64, error) {
	params = pagination.Normalize(params)

	query := r.db.WithContext(ctx).Model(&models.User{})
	query = applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []UserWithOrderCount
	err := query.
		Select("users.*, (SELECT COUNT(*) FROM orders WHERE orders.user_id = users.id) AS order_count").
		Order("users.created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	return query
}

func (r *gormRepository) CountOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).
		Error
	return count, err
}

func (r *gormRepository) Stats(ctx context.Context, monthStart time.Time) (UserStatsDTO, error) {
	var stats UserStatsDTO
	base := func() *gorm.DB { return r.db.WithContext(ctx).Model(&models.User{}) }

	if err := base().Count(&stats.TotalUsers).Error; err != nil {
		return UserStatsDTO{}, err
	}
	if err := base().Where("is_active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return UserStatsDTO{}, err
	}
	stats.InactiveUsers = stats.TotalUsers - stats.ActiveUsers
	if err := base().Where("role = ?", enums.UserRoleAdmin).Count(&stats.AdminUsers).Error; err != nil {
		return UserStatsDTO{}, err
	}
	if err := base().Where("created_at >= ?", monthStart).Count(&stats.NewThisMonth).Error; err != nil {
		return UserStatsDTO{}, err
	}
	return stats, nil
}
