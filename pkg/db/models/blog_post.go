package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// BlogPost is an editorial article on the storefront.
type BlogPost struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Title      string         `gorm:"column:title;not null"`
	Excerpt    string         `gorm:"column:excerpt;not null;default:''"`
	Content    string         `gorm:"column:content;not null"`
	Image      string         `gorm:"column:image;not null;default:''"`
	Category   string         `gorm:"column:category;not null;index"`
	AuthorID   uuid.UUID      `gorm:"column:author_id;type:uuid;not null"`
	AuthorName string         `gorm:"column:author_name;not null"`
	Tags       pq.StringArray `gorm:"column:tags;type:text[]"`
	Published  bool           `gorm:"column:published;not null;default:false"`
	Featured   bool           `gorm:"column:featured;not null;default:false"`
	Views      int64          `gorm:"column:views;not null;default:0"`
	Likes      int64          `gorm:"column:likes;not null;default:0"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *BlogPost) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BlogPostLike records one like per (post, user).
type BlogPostLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;uniqueIndex:ux_blog_like"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_blog_like"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *BlogPostLike) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
