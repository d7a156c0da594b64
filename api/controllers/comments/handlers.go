package comments

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/api/middleware"
	"github.com/atino-shop/atino-backend/api/responses"
	"github.com/atino-shop/atino-backend/api/validators"
	commentsvc "github.com/atino-shop/atino-backend/internal/comments"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
	"github.com/atino-shop/atino-backend/pkg/logger"
)

// createRequest wraps the review payload with the target product.
type createRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Content   string    `json:"content" validate:"required,min=10,max=500"`
	Rating    int       `json:"rating" validate:"required,gte=1,lte=5"`
}

// ListByProduct serves a product's reviews. Public.
func ListByProduct(svc commentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}

		productID, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByProduct(r.Context(), productID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WritePage(w, result, result.Pagination)
	}
}

// Eligibility reports whether the caller may review the product and why not.
func Eligibility(svc commentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}

		productID, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CanComment(r.Context(), middleware.UserIDFromContext(r.Context()), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// Create posts a review for a product the caller has received.
func Create(svc commentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}

		var body createRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := commentsvc.CreateCommentInput{Content: body.Content, Rating: body.Rating}
		result, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), body.ProductID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Update edits the caller's own review.
func Update(svc commentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}

		commentID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body commentsvc.UpdateCommentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), commentID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// Delete removes a review. Owners delete their own, admins any.
func Delete(svc commentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}

		commentID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if err := svc.Delete(ctx, middleware.UserIDFromContext(ctx), middleware.IsAdminFromContext(ctx), commentID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteMessage(w, "comment deleted")
	}
}
