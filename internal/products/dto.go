package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// ProductDTO is the storefront projection of a catalog product.
type ProductDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           int64     `json:"price"`
	OriginalPrice   *int64    `json:"originalPrice,omitempty"`
	DiscountPercent int       `json:"discountPercent"`
	Image           string    `json:"image"`
	Images          []string  `json:"images"`
	Category        string    `json:"category"`
	Sizes           []string  `json:"sizes"`
	Colors          []string  `json:"colors"`
	Tags            []string  `json:"tags"`
	IsNew           bool      `json:"isNew"`
	IsSale          bool      `json:"isSale"`
	InStock         bool      `json:"inStock"`
	StockQuantity   int       `json:"stockQuantity"`
	Rating          float64   `json:"rating"`
	NumReviews      int       `json:"numReviews"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ProductListDTO is a page of products plus pagination metadata.
type ProductListDTO struct {
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Meta `json:"-"`
}

// ListFilters narrows the public catalog listing.
type ListFilters struct {
	Category string
	Search   string
	IsNew    *bool
	IsSale   *bool
	PriceMin *int64
	PriceMax *int64
	Sort     string
}

// CreateProductInput carries admin-provided fields for a new product.
type CreateProductInput struct {
	Name          string   `json:"name" validate:"required,max=100"`
	Description   string   `json:"description"`
	Price         int64    `json:"price" validate:"required,gt=0"`
	OriginalPrice *int64   `json:"originalPrice" validate:"omitempty,gt=0"`
	Image         string   `json:"image"`
	Images        []string `json:"images"`
	Category      string   `json:"category" validate:"required"`
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
	Tags          []string `json:"tags"`
	IsNew         bool     `json:"isNew"`
	IsSale        bool     `json:"isSale"`
	InStock       *bool    `json:"inStock"`
	StockQuantity int      `json:"stockQuantity" validate:"gte=0"`
}

// UpdateProductInput carries partial admin updates. Nil fields stay untouched.
type UpdateProductInput struct {
	Name          *string   `json:"name" validate:"omitempty,max=100"`
	Description   *string   `json:"description"`
	Price         *int64    `json:"price" validate:"omitempty,gt=0"`
	OriginalPrice *int64    `json:"originalPrice" validate:"omitempty,gt=0"`
	Image         *string   `json:"image"`
	Images        *[]string `json:"images"`
	Category      *string   `json:"category"`
	Sizes         *[]string `json:"sizes"`
	Colors        *[]string `json:"colors"`
	Tags          *[]string `json:"tags"`
	IsNew         *bool     `json:"isNew"`
	IsSale        *bool     `json:"isSale"`
	InStock       *bool     `json:"inStock"`
	StockQuantity *int      `json:"stockQuantity" validate:"omitempty,gte=0"`
}

// DiscountPercent derives the rounded percentage saved when the original
// price exceeds the current price. Anything else reports zero.
func DiscountPercent(price int64, originalPrice *int64) int {
	if originalPrice == nil || *originalPrice <= price || *originalPrice <= 0 {
		return 0
	}
	orig := decimal.NewFromInt(*originalPrice)
	diff := orig.Sub(decimal.NewFromInt(price))
	percent := diff.Div(orig).Mul(decimal.NewFromInt(100))
	return int(percent.Round(0).IntPart())
}

// ToDTO converts the storage model into the API projection.
func ToDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		OriginalPrice:   p.OriginalPrice,
		DiscountPercent: DiscountPercent(p.Price, p.OriginalPrice),
		Image:           p.Image,
		Images:          sliceOrEmpty(p.Images),
		Category:        p.Category,
		Sizes:           sliceOrEmpty(p.Sizes),
		Colors:          sliceOrEmpty(p.Colors),
		Tags:            sliceOrEmpty(p.Tags),
		IsNew:           p.IsNew,
		IsSale:          p.IsSale,
		InStock:         p.InStock,
		StockQuantity:   p.StockQuantity,
		Rating:          p.Rating,
		NumReviews:      p.NumReviews,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func sliceOrEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
