package comments

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/internal/orders"
	"github.com/atino-shop/atino-backend/internal/products"
	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

const (
	minContentLen = 10
	maxContentLen = 500
)

const (
	reasonNotPurchased   = "only verified purchasers can review this product"
	reasonAlreadyDone    = "you have already reviewed this product"
	reasonUnknownProduct = "product not found"
)

// ServiceParams groups dependencies for the comment service.
type ServiceParams struct {
	CommentRepo Repository
	OrderRepo   orders.Repository
	ProductRepo products.Repository
}

// Service exposes business rules for product reviews.
type Service interface {
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (CommentListDTO, error)
	CanComment(ctx context.Context, userID, productID uuid.UUID) (EligibilityDTO, error)
	Create(ctx context.Context, userID, productID uuid.UUID, input CreateCommentInput) (CommentDTO, error)
	Update(ctx context.Context, userID, commentID uuid.UUID, input UpdateCommentInput) (CommentDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, isAdmin bool, commentID uuid.UUID) error
}

type service struct {
	commentRepo Repository
	orderRepo   orders.Repository
	productRepo products.Repository
}

// NewService builds a comment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CommentRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "comment repo is required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repo is required")
	}
	return &service{
		commentRepo: params.CommentRepo,
		orderRepo:   params.OrderRepo,
		productRepo: params.ProductRepo,
	}, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (CommentListDTO, error) {
	if productID == uuid.Nil {
		return CommentListDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	rows, total, err := s.commentRepo.ListByProduct(ctx, productID, params)
	if err != nil {
		return CommentListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}

	dtos := make([]CommentDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ToDTO(row))
	}
	return CommentListDTO{
		Comments:   dtos,
		Pagination: pagination.NewMeta(params, total),
	}, nil
}

// CanComment reports eligibility without creating anything, so the UI can
// show or hide the review form.
func (s *service) CanComment(ctx context.Context, userID, productID uuid.UUID) (EligibilityDTO, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return EligibilityDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if db.IsNotFound(err) {
			return EligibilityDTO{CanComment: false, Reason: reasonUnknownProduct}, nil
		}
		return EligibilityDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	purchased, err := s.orderRepo.HasDeliveredOrderWithProduct(ctx, userID, productID)
	if err != nil {
		return EligibilityDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchase history")
	}

	var commented bool
	_, err = s.commentRepo.FindByUserAndProduct(ctx, userID, productID)
	switch {
	case err == nil:
		commented = true
	case db.IsNotFound(err):
	default:
		return EligibilityDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}

	dto := EligibilityDTO{
		CanComment:   purchased && !commented,
		HasPurchased: purchased,
		HasCommented: commented,
	}
	switch {
	case commented:
		dto.Reason = reasonAlreadyDone
	case !purchased:
		dto.Reason = reasonNotPurchased
	}
	return dto, nil
}

// Create stores the review after re-running the eligibility gate. The unique
// (user, product) index backs the check against concurrent submissions.
func (s *service) Create(ctx context.Context, userID, productID uuid.UUID, input CreateCommentInput) (CommentDTO, error) {
	if err := validateContent(input.Content, input.Rating); err != nil {
		return CommentDTO{}, err
	}

	eligibility, err := s.CanComment(ctx, userID, productID)
	if err != nil {
		return CommentDTO{}, err
	}
	if !eligibility.CanComment {
		switch {
		case eligibility.HasCommented:
			return CommentDTO{}, pkgerrors.New(pkgerrors.CodeConflict, reasonAlreadyDone)
		case eligibility.Reason == reasonUnknownProduct:
			return CommentDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, reasonUnknownProduct)
		default:
			return CommentDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, reasonNotPurchased)
		}
	}

	comment := &models.Comment{
		ProductID: productID,
		UserID:    userID,
		Content:   strings.TrimSpace(input.Content),
		Rating:    input.Rating,
	}
	if _, err := s.commentRepo.Create(ctx, comment); err != nil {
		if db.IsUniqueViolation(err) {
			return CommentDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, reasonAlreadyDone)
		}
		return CommentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}

	if err := s.refreshProductRating(ctx, productID); err != nil {
		return CommentDTO{}, err
	}

	created, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil {
		return CommentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load created comment")
	}
	return ToDTO(*created), nil
}

// Update edits the caller's own review. Omitted fields keep their stored
// values; supplied fields go through the same validation as creation.
func (s *service) Update(ctx context.Context, userID, commentID uuid.UUID, input UpdateCommentInput) (CommentDTO, error) {
	if input.Content != nil {
		if err := validateRange(*input.Content); err != nil {
			return CommentDTO{}, err
		}
	}
	if input.Rating != nil {
		if err := validateRating(*input.Rating); err != nil {
			return CommentDTO{}, err
		}
	}

	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return CommentDTO{}, err
	}
	if comment.UserID != userID {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "you can only edit your own review")
	}

	if input.Content != nil {
		comment.Content = strings.TrimSpace(*input.Content)
	}
	if input.Rating != nil {
		comment.Rating = *input.Rating
	}
	comment.User = nil

	if _, err := s.commentRepo.Update(ctx, comment); err != nil {
		return CommentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update comment")
	}

	if err := s.refreshProductRating(ctx, comment.ProductID); err != nil {
		return CommentDTO{}, err
	}

	updated, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil {
		return CommentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load updated comment")
	}
	return ToDTO(*updated), nil
}

// Delete removes the review. Owners and admins may delete.
func (s *service) Delete(ctx context.Context, actorID uuid.UUID, isAdmin bool, commentID uuid.UUID) error {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !isAdmin && comment.UserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "you can only delete your own review")
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "comment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete comment")
	}

	return s.refreshProductRating(ctx, comment.ProductID)
}

func (s *service) findComment(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	if commentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment id is required")
	}
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "comment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comment")
	}
	return comment, nil
}

func (s *service) refreshProductRating(ctx context.Context, productID uuid.UUID) error {
	agg, err := s.commentRepo.AggregateForProduct(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}
	if err := s.productRepo.UpdateRating(ctx, nil, productID, agg.Average, agg.Count); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
	}
	return nil
}

func validateContent(content string, rating int) error {
	if err := validateRange(content); err != nil {
		return err
	}
	return validateRating(rating)
}

func validateRange(content string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(content))
	if length < minContentLen || length > maxContentLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "content must be between 10 and 500 characters").
			WithDetails(map[string]any{"length": length})
	}
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]any{"rating": rating})
	}
	return nil
}
