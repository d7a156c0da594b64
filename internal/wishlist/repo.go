package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/pkg/db/models"
)

// Repository defines persistence operations for wishlists.
type Repository interface {
	FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error)
	CreateItem(ctx context.Context, item *models.WishlistItem) error
	HasItem(ctx context.Context, wishlistID, productID uuid.UUID) (bool, error)
	CountItems(ctx context.Context, wishlistID uuid.UUID) (int64, error)
	DeleteItem(ctx context.Context, wishlistID, productID uuid.UUID) error
	ClearItems(ctx context.Context, wishlistID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// FindOrCreateByUser loads the user's wishlist with products, creating an
// empty one on first access.
func (r *gormRepository) FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	wishlist, err := r.findByUser(ctx, userID)
	if err == nil {
		return wishlist, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.Wishlist{UserID: userID}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// Concurrent first access can race on the unique user index.
		existing, findErr := r.findByUser(ctx, userID)
		if findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	created.Items = []models.WishlistItem{}
	return created, nil
}

func (r *gormRepository) findByUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("wishlist_items.created_at DESC")
		}).
		Preload("Items.Product").
		First(&wishlist, "user_id = ?", userID).
		Error
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (r *gormRepository) CreateItem(ctx context.Context, item *models.WishlistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository) HasItem(ctx context.Context, wishlistID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) CountItems(ctx context.Context, wishlistID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("wishlist_id = ?", wishlistID).
		Count(&count).
		Error
	return count, err
}

// DeleteItem drops the product from the wishlist. Missing entries are not
// an error.
func (r *gormRepository) DeleteItem(ctx context.Context, wishlistID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&models.WishlistItem{}).
		Error
}

func (r *gormRepository) ClearItems(ctx context.Context, wishlistID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Delete(&models.WishlistItem{}).
		Error
}
