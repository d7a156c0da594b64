package comments

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// RatingAggregate is the denormalized review summary for a product.
type RatingAggregate struct {
	Average float64
	Count   int
}

// Repository defines persistence operations for product reviews.
type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Comment, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Comment, int64, error)
	Update(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AggregateForProduct(ctx context.Context, productID uuid.UUID) (RatingAggregate, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs a comment repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&comment, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *gormRepository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&comment).
		Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *gormRepository) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Comment, int64, error) {
	params = pagination.Normalize(params)

	query := r.db.WithContext(ctx).Model(&models.Comment{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := query.
		Preload("User").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&comments).
		Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *gormRepository) Update(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) AggregateForProduct(ctx context.Context, productID uuid.UUID) (RatingAggregate, error) {
	var row struct {
		Average sql.NullFloat64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("AVG(rating) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).
		Error
	if err != nil {
		return RatingAggregate{}, err
	}
	agg := RatingAggregate{Count: int(row.Count)}
	if row.Average.Valid {
		agg.Average = row.Average.Float64
	}
	return agg, nil
}
