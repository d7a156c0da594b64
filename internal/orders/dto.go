package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/enums"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// ShippingAddressDTO mirrors the embedded delivery destination.
type ShippingAddressDTO struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// OrderItemDTO is a frozen line from checkout.
type OrderItemDTO struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"productId"`
	Name          string    `json:"name"`
	Image         string    `json:"image"`
	Price         int64     `json:"price"`
	Quantity      int       `json:"quantity"`
	SelectedSize  string    `json:"selectedSize,omitempty"`
	SelectedColor string    `json:"selectedColor,omitempty"`
}

// OrderDTO is the full order projection.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	UserID          uuid.UUID           `json:"userId"`
	OrderItems      []OrderItemDTO      `json:"orderItems"`
	ShippingAddress ShippingAddressDTO  `json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	Note            string              `json:"note,omitempty"`
	ItemsPrice      int64               `json:"itemsPrice"`
	ShippingPrice   int64               `json:"shippingPrice"`
	TotalPrice      int64               `json:"totalPrice"`
	OrderStatus     enums.OrderStatus   `json:"orderStatus"`
	TrackingNumber  *string             `json:"trackingNumber,omitempty"`
	IsDelivered     bool                `json:"isDelivered"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// OrderListDTO is a page of orders plus pagination metadata.
type OrderListDTO struct {
	Orders     []OrderDTO      `json:"orders"`
	Pagination pagination.Meta `json:"-"`
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status enums.OrderStatus
	Search string
}

// UpdateStatusInput carries the admin transition request.
type UpdateStatusInput struct {
	Status         enums.OrderStatus `json:"status" validate:"required"`
	TrackingNumber *string           `json:"trackingNumber"`
}

// StatsDTO aggregates order counts and revenue for the back office.
// Revenue counts only delivered orders.
type StatsDTO struct {
	TotalOrders    int64                       `json:"totalOrders"`
	TotalRevenue   int64                       `json:"totalRevenue"`
	CountsByStatus map[enums.OrderStatus]int64 `json:"countsByStatus"`
}

// ToDTO converts the storage model into the API projection.
func ToDTO(order models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, OrderItemDTO{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Name:          item.Name,
			Image:         item.Image,
			Price:         item.Price,
			Quantity:      item.Quantity,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}

	return OrderDTO{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		OrderItems:  items,
		ShippingAddress: ShippingAddressDTO{
			FullName: order.ShippingAddress.FullName,
			Phone:    order.ShippingAddress.Phone,
			Email:    order.ShippingAddress.Email,
			Address:  order.ShippingAddress.Address,
			City:     order.ShippingAddress.City,
		},
		PaymentMethod:  order.PaymentMethod,
		Note:           order.Note,
		ItemsPrice:     order.ItemsPrice,
		ShippingPrice:  order.ShippingPrice,
		TotalPrice:     order.TotalPrice,
		OrderStatus:    order.OrderStatus,
		TrackingNumber: order.TrackingNumber,
		IsDelivered:    order.IsDelivered,
		DeliveredAt:    order.DeliveredAt,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}
