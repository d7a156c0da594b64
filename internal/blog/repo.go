package blog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// Repository defines persistence operations for blog posts.
type Repository interface {
	Create(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.BlogPost, int64, error)
	Update(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	CreateLike(ctx context.Context, like *models.BlogPostLike) error
	DeleteLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	HasLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	SetLikeCount(ctx context.Context, postID uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs a blog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error) {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *gormRepository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.BlogPost, int64, error) {
	params = pagination.Normalize(params)

	query := r.db.WithContext(ctx).Model(&models.BlogPost{})
	query = applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit)

	var posts []models.BlogPost
	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.Published != nil {
		query = query.Where("published = ?", *filters.Published)
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if filters.Featured != nil {
		query = query.Where("featured = ?", *filters.Featured)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ?", pattern, pattern)
	}
	return query
}

func (r *gormRepository) Update(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error) {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BlogPost{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).
		Error
}

func (r *gormRepository) CreateLike(ctx context.Context, like *models.BlogPostLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteLike removes the user's like and reports whether one existed.
func (r *gormRepository) DeleteLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.BlogPostLike{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) HasLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BlogPostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetLikeCount recomputes the denormalized likes counter from the join
// rows and returns the new value.
func (r *gormRepository) SetLikeCount(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BlogPostLike{}).
		Where("post_id = ?", postID).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("id = ?", postID).
		UpdateColumn("likes", count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
