package blog

import (
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// PostDTO is a blog post as rendered on the storefront.
type PostDTO struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `json:"content"`
	Image      string    `json:"image"`
	Category   string    `json:"category"`
	AuthorID   uuid.UUID `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Tags       []string  `json:"tags"`
	Published  bool      `json:"published"`
	Featured   bool      `json:"featured"`
	Views      int64     `json:"views"`
	Likes      int64     `json:"likes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PostListDTO is a page of posts plus pagination metadata.
type PostListDTO struct {
	Posts      []PostDTO       `json:"posts"`
	Pagination pagination.Meta `json:"-"`
}

// LikeDTO reports the outcome of a like toggle.
type LikeDTO struct {
	PostID uuid.UUID `json:"postId"`
	Liked  bool      `json:"liked"`
	Likes  int64     `json:"likes"`
}

// ListFilters narrows the public post listing.
type ListFilters struct {
	Category string
	Search   string
	Featured *bool
	// Unset means published-only; admins pass a pointer to see drafts too.
	Published *bool
}

// CreatePostInput carries a new post from the back office.
type CreatePostInput struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Excerpt   string   `json:"excerpt" validate:"max=500"`
	Content   string   `json:"content" validate:"required"`
	Image     string   `json:"image" validate:"omitempty,url"`
	Category  string   `json:"category" validate:"required"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
	Featured  bool     `json:"featured"`
}

// UpdatePostInput edits an existing post. Nil fields are left unchanged.
type UpdatePostInput struct {
	Title     *string   `json:"title" validate:"omitempty,max=200"`
	Excerpt   *string   `json:"excerpt" validate:"omitempty,max=500"`
	Content   *string   `json:"content"`
	Image     *string   `json:"image" validate:"omitempty,url"`
	Category  *string   `json:"category"`
	Tags      *[]string `json:"tags"`
	Published *bool     `json:"published"`
	Featured  *bool     `json:"featured"`
}

// ToDTO converts the storage model into the API projection.
func ToDTO(post models.BlogPost) PostDTO {
	tags := []string(post.Tags)
	if tags == nil {
		tags = []string{}
	}
	return PostDTO{
		ID:         post.ID,
		Title:      post.Title,
		Excerpt:    post.Excerpt,
		Content:    post.Content,
		Image:      post.Image,
		Category:   post.Category,
		AuthorID:   post.AuthorID,
		AuthorName: post.AuthorName,
		Tags:       tags,
		Published:  post.Published,
		Featured:   post.Featured,
		Views:      post.Views,
		Likes:      post.Likes,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
}
