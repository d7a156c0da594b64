package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product represents a storefront catalog listing. Prices are integer VND.
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name          string         `gorm:"column:name;not null"`
	Description   string         `gorm:"column:description;not null;default:''"`
	Price         int64          `gorm:"column:price;not null"`
	OriginalPrice *int64         `gorm:"column:original_price"`
	Image         string         `gorm:"column:image;not null;default:''"`
	Images        pq.StringArray `gorm:"column:images;type:text[]"`
	Category      string         `gorm:"column:category;not null;index"`
	Sizes         pq.StringArray `gorm:"column:sizes;type:text[]"`
	Colors        pq.StringArray `gorm:"column:colors;type:text[]"`
	Tags          pq.StringArray `gorm:"column:tags;type:text[]"`
	IsNew         bool           `gorm:"column:is_new;not null;default:false"`
	IsSale        bool           `gorm:"column:is_sale;not null;default:false"`
	InStock       bool           `gorm:"column:in_stock;not null;default:true"`
	StockQuantity int            `gorm:"column:stock_quantity;not null;default:0"`
	Rating        float64        `gorm:"column:rating;not null;default:0"`
	NumReviews    int            `gorm:"column:num_reviews;not null;default:0"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
