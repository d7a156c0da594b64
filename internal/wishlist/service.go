package wishlist

import (
	"context"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/internal/products"
	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo Repository
	ProductRepo  products.Repository
}

// Service exposes business rules for wishlists.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (WishlistDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (WishlistDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (WishlistDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type service struct {
	wishlistRepo Repository
	productRepo  products.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repo is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		productRepo:  params.ProductRepo,
	}, nil
}

// Get returns the user's wishlist, creating it on first access.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (WishlistDTO, error) {
	if userID == uuid.Nil {
		return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	wishlist, err := s.wishlistRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	return ToDTO(*wishlist), nil
}

// AddItem saves a product to the wishlist. Adding a product that is
// already saved is a no-op.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (WishlistDTO, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if db.IsNotFound(err) {
			return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	wishlist, err := s.wishlistRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}

	item := &models.WishlistItem{WishlistID: wishlist.ID, ProductID: productID}
	if err := s.wishlistRepo.CreateItem(ctx, item); err != nil && !db.IsUniqueViolation(err) {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}

	return s.Get(ctx, userID)
}

// RemoveItem drops a product from the wishlist. Removing a product that
// is not saved is a no-op.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (WishlistDTO, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return WishlistDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}

	wishlist, err := s.wishlistRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}

	if err := s.wishlistRepo.DeleteItem(ctx, wishlist.ID, productID); err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}

	return s.Get(ctx, userID)
}

// Clear removes every saved product.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	wishlist, err := s.wishlistRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	if err := s.wishlistRepo.ClearItems(ctx, wishlist.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear wishlist")
	}
	return nil
}

// Count returns the number of saved products.
func (s *service) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	wishlist, err := s.wishlistRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	count, err := s.wishlistRepo.CountItems(ctx, wishlist.ID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count wishlist items")
	}
	return count, nil
}

// Contains reports whether the product is saved in the user's wishlist.
func (s *service) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}

	wishlist, err := s.wishlistRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}

	has, err := s.wishlistRepo.HasItem(ctx, wishlist.ID, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wishlist item")
	}
	return has, nil
}
