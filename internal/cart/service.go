package cart

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/atino-shop/atino-backend/internal/products"
	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
)

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	CartRepo    Repository
	ProductRepo products.Repository
}

// Service exposes business rules for cart management.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (CartDTO, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, input UpdateItemInput) (CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, input RemoveItemInput) (CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (CartDTO, error)
}

type service struct {
	cartRepo    Repository
	productRepo products.Repository
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repo is required")
	}
	return &service{
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
	}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartDTO{}, err
	}
	return ToDTO(*cart), nil
}

// AddItem merges into an existing line when the (product, size, color) tuple
// matches, otherwise appends a new line.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (CartDTO, error) {
	if input.ProductID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	size, color, err := variantKey(input.SelectedSize, input.SelectedColor)
	if err != nil {
		return CartDTO{}, err
	}

	if _, err := s.productRepo.FindByID(ctx, input.ProductID); err != nil {
		if db.IsNotFound(err) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartDTO{}, err
	}

	existing, err := s.cartRepo.FindItem(ctx, cart.ID, input.ProductID, size, color)
	switch {
	case err == nil:
		if err := s.cartRepo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+input.Quantity); err != nil {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart line")
		}
	case db.IsNotFound(err):
		item := &models.CartItem{
			CartID:        cart.ID,
			ProductID:     input.ProductID,
			Quantity:      input.Quantity,
			SelectedSize:  size,
			SelectedColor: color,
		}
		if err := s.cartRepo.CreateItem(ctx, item); err != nil {
			if db.IsUniqueViolation(err) {
				return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart line already exists")
			}
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
		}
	default:
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart line")
	}

	return s.GetCart(ctx, userID)
}

// UpdateItem sets the absolute quantity for the line matching the
// (product, size, color) triple.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, input UpdateItemInput) (CartDTO, error) {
	if productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	size, color, err := variantKey(input.SelectedSize, input.SelectedColor)
	if err != nil {
		return CartDTO{}, err
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartDTO{}, err
	}

	item, err := s.cartRepo.FindItem(ctx, cart.ID, productID, size, color)
	if err != nil {
		if db.IsNotFound(err) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart line")
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, input.Quantity); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem drops the line matching the triple. Removing an absent line
// succeeds so retries stay harmless.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID, input RemoveItemInput) (CartDTO, error) {
	if productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	size, color, err := variantKey(input.SelectedSize, input.SelectedColor)
	if err != nil {
		return CartDTO{}, err
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartDTO{}, err
	}

	if err := s.cartRepo.DeleteItem(ctx, cart.ID, productID, size, color); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}

	return s.GetCart(ctx, userID)
}

// Clear empties the cart entirely.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (CartDTO, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartDTO{}, err
	}

	if err := s.cartRepo.ClearItems(ctx, nil, cart.ID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}

	return s.GetCart(ctx, userID)
}

func (s *service) loadCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cart, err := s.cartRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func variantKey(size, color string) (string, string, error) {
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)
	if size == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "selected size is required")
	}
	if color == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "selected color is required")
	}
	return size, color, nil
}
