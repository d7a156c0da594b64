package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/pkg/enums"
)

// ShippingAddress is the embedded delivery destination on an order.
type ShippingAddress struct {
	FullName string `gorm:"column:shipping_full_name;not null"`
	Phone    string `gorm:"column:shipping_phone;not null"`
	Email    string `gorm:"column:shipping_email;not null"`
	Address  string `gorm:"column:shipping_address;not null"`
	City     string `gorm:"column:shipping_city;not null"`
}

// Order is a placed order. Item rows are snapshots frozen at checkout;
// later catalog edits never change an order.
type Order struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	OrderItems      []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress     `gorm:"embedded"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Note            string              `gorm:"column:note;not null;default:''"`
	ItemsPrice      int64               `gorm:"column:items_price;not null"`
	ShippingPrice   int64               `gorm:"column:shipping_price;not null"`
	TotalPrice      int64               `gorm:"column:total_price;not null"`
	OrderStatus     enums.OrderStatus   `gorm:"column:order_status;type:text;not null;default:pending;index"`
	TrackingNumber  *string             `gorm:"column:tracking_number"`
	IsDelivered     bool                `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a denormalized copy of a product at purchase time.
type OrderItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name          string    `gorm:"column:name;not null"`
	Image         string    `gorm:"column:image;not null;default:''"`
	Price         int64     `gorm:"column:price;not null"`
	Quantity      int       `gorm:"column:quantity;not null"`
	SelectedSize  string    `gorm:"column:selected_size;not null;default:''"`
	SelectedColor string    `gorm:"column:selected_color;not null;default:''"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (oi *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}
