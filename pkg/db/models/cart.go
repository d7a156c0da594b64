package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the single active cart for a user.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartItem is one cart line. Line identity is the
// (cart, product, size, color) tuple enforced by the composite index.
type CartItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CartID        uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_line"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_line"`
	Quantity      int       `gorm:"column:quantity;not null;default:1"`
	SelectedSize  string    `gorm:"column:selected_size;not null;default:'';uniqueIndex:ux_cart_line"`
	SelectedColor string    `gorm:"column:selected_color;not null;default:'';uniqueIndex:ux_cart_line"`
	Product       *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ci *CartItem) BeforeCreate(_ *gorm.DB) error {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	return nil
}
