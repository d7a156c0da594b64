package wishlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/internal/products"
	"github.com/atino-shop/atino-backend/pkg/db/models"
)

// WishlistDTO is the user's wishlist with product details resolved.
type WishlistDTO struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"userId"`
	Items     []WishlistItemDTO `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// WishlistItemDTO is a saved product.
type WishlistItemDTO struct {
	ID      uuid.UUID            `json:"id"`
	Product *products.ProductDTO `json:"product,omitempty"`
	AddedAt time.Time            `json:"addedAt"`
}

// ToDTO converts the storage model. Items whose product was removed from
// the catalog still appear, with a nil product.
func ToDTO(wishlist models.Wishlist) WishlistDTO {
	items := make([]WishlistItemDTO, 0, len(wishlist.Items))
	for _, item := range wishlist.Items {
		dto := WishlistItemDTO{ID: item.ID, AddedAt: item.CreatedAt}
		if item.Product != nil {
			product := products.ToDTO(*item.Product)
			dto.Product = &product
		}
		items = append(items, dto)
	}
	return WishlistDTO{
		ID:        wishlist.ID,
		UserID:    wishlist.UserID,
		Items:     items,
		UpdatedAt: wishlist.UpdatedAt,
	}
}
