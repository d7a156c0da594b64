package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/pkg/db/models"
)

// Repository defines persistence operations for carts and their lines.
type Repository interface {
	FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID, size, color string) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID, size, color string) error
	ClearItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// FindOrCreateByUser loads the user's cart with items and products, creating
// an empty cart on first access.
func (r *gormRepository) FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// Concurrent first access can race on the unique user index.
		existing, findErr := r.FindByUser(ctx, userID)
		if findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	created.Items = []models.CartItem{}
	return created, nil
}

func (r *gormRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Preload("Items.Product").
		First(&cart, "user_id = ?", userID).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *gormRepository) FindItem(ctx context.Context, cartID, productID uuid.UUID, size, color string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ? AND selected_size = ? AND selected_color = ?",
			cartID, productID, strings.TrimSpace(size), strings.TrimSpace(color)).
		First(&item).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormRepository) CreateItem(ctx context.Context, item *models.CartItem) error {
	item.SelectedSize = strings.TrimSpace(item.SelectedSize)
	item.SelectedColor = strings.TrimSpace(item.SelectedColor)
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).
		Error
}

// DeleteItem drops the line matching the (product, size, color) triple if
// present. Missing lines are not an error.
func (r *gormRepository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID, size, color string) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ? AND selected_size = ? AND selected_color = ?",
			cartID, productID, strings.TrimSpace(size), strings.TrimSpace(color)).
		Delete(&models.CartItem{}).
		Error
}

// ClearItems removes every line from the cart. When tx is provided the delete
// joins the surrounding transaction.
func (r *gormRepository) ClearItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).
		Error
}
