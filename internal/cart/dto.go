package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/internal/products"
	"github.com/atino-shop/atino-backend/pkg/db/models"
)

// CartItemDTO is one cart line joined with its current product.
type CartItemDTO struct {
	ID            uuid.UUID            `json:"id"`
	ProductID     uuid.UUID            `json:"productId"`
	Quantity      int                  `json:"quantity"`
	SelectedSize  string               `json:"selectedSize,omitempty"`
	SelectedColor string               `json:"selectedColor,omitempty"`
	Product       *products.ProductDTO `json:"product,omitempty"`
	LineTotal     int64                `json:"lineTotal"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// CartDTO is the full cart view with computed totals.
type CartDTO struct {
	ID         uuid.UUID     `json:"id"`
	UserID     uuid.UUID     `json:"userId"`
	Items      []CartItemDTO `json:"items"`
	ItemsPrice int64         `json:"itemsPrice"`
	ItemCount  int           `json:"itemCount"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// AddItemInput carries the fields for adding a product to the cart.
type AddItemInput struct {
	ProductID     uuid.UUID `json:"productId" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,gte=1"`
	SelectedSize  string    `json:"selectedSize" validate:"required"`
	SelectedColor string    `json:"selectedColor" validate:"required"`
}

// UpdateItemInput sets the absolute quantity for one variant line. Size and
// color pick the line out when the same product sits in the cart twice.
type UpdateItemInput struct {
	Quantity      int    `json:"quantity" validate:"required,gte=1"`
	SelectedSize  string `json:"selectedSize" validate:"required"`
	SelectedColor string `json:"selectedColor" validate:"required"`
}

// RemoveItemInput names the variant line to drop.
type RemoveItemInput struct {
	SelectedSize  string `json:"selectedSize" validate:"required"`
	SelectedColor string `json:"selectedColor" validate:"required"`
}

// ToDTO converts the stored cart into the API projection. Line totals use
// the product's current price; checkout freezes its own copies.
func ToDTO(cart models.Cart) CartDTO {
	items := make([]CartItemDTO, 0, len(cart.Items))
	var itemsPrice int64
	var count int

	for _, item := range cart.Items {
		dto := CartItemDTO{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
			CreatedAt:     item.CreatedAt,
		}
		if item.Product != nil {
			product := products.ToDTO(*item.Product)
			dto.Product = &product
			dto.LineTotal = item.Product.Price * int64(item.Quantity)
		}
		itemsPrice += dto.LineTotal
		count += item.Quantity
		items = append(items, dto)
	}

	return CartDTO{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      items,
		ItemsPrice: itemsPrice,
		ItemCount:  count,
		UpdatedAt:  cart.UpdatedAt,
	}
}
