package comments

import (
	"time"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

// CommentDTO is a product review joined with its author.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"productId"`
	UserID     uuid.UUID `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar *string   `json:"userAvatar,omitempty"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CommentListDTO is a page of reviews plus pagination metadata.
type CommentListDTO struct {
	Comments   []CommentDTO    `json:"comments"`
	Pagination pagination.Meta `json:"-"`
}

// EligibilityDTO reports whether the user may review a product, with the
// underlying purchase and existing-review checks broken out so the UI can
// explain the verdict.
type EligibilityDTO struct {
	CanComment   bool   `json:"canComment"`
	HasPurchased bool   `json:"hasPurchased"`
	HasCommented bool   `json:"hasCommented"`
	Reason       string `json:"reason,omitempty"`
}

// CreateCommentInput carries a new review.
type CreateCommentInput struct {
	Content string `json:"content" validate:"required,min=10,max=500"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// UpdateCommentInput edits an existing review. Both fields are optional;
// only supplied fields are validated and written.
type UpdateCommentInput struct {
	Content *string `json:"content" validate:"omitempty,min=10,max=500"`
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

// ToDTO converts the storage model into the API projection.
func ToDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		ProductID: comment.ProductID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		Rating:    comment.Rating,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if comment.User != nil {
		dto.UserName = comment.User.Name
		dto.UserAvatar = comment.User.Avatar
	}
	return dto
}
