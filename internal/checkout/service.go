package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atino-shop/atino-backend/internal/cart"
	"github.com/atino-shop/atino-backend/internal/orders"
	"github.com/atino-shop/atino-backend/internal/products"
	"github.com/atino-shop/atino-backend/pkg/config"
	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/enums"
	pkgerrors "github.com/atino-shop/atino-backend/pkg/errors"
)

const orderNumberAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the checkout orchestrator.
type ServiceParams struct {
	CartRepo    cart.Repository
	ProductRepo products.Repository
	OrderRepo   orders.Repository
	Tx          txRunner
	Pricing     config.CheckoutConfig
	Now         func() time.Time
}

// Service converts a cart into an order atomically.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (orders.OrderDTO, error)
}

type service struct {
	cartRepo    cart.Repository
	productRepo products.Repository
	orderRepo   orders.Repository
	tx          txRunner
	pricing     config.CheckoutConfig
	now         func() time.Time
}

// NewService builds the checkout orchestrator with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repo is required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
		orderRepo:   params.OrderRepo,
		tx:          params.Tx,
		pricing:     params.Pricing,
		now:         now,
	}, nil
}

// PlaceOrder validates every cart line against the live catalog, freezes
// prices into order items, and clears the cart. Any failing line aborts the
// whole checkout; no partial order is ever created.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := validateInput(input); err != nil {
		return orders.OrderDTO{}, err
	}

	userCart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeInvalidState, "Cart is empty")
		}
		return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(userCart.Items) == 0 {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeInvalidState, "Cart is empty")
	}

	items, itemsPrice, err := s.buildOrderItems(userCart.Items)
	if err != nil {
		return orders.OrderDTO{}, err
	}

	shippingPrice := s.shippingFor(itemsPrice)

	order := &models.Order{
		UserID: userID,
		ShippingAddress: models.ShippingAddress{
			FullName: strings.TrimSpace(input.ShippingAddress.FullName),
			Phone:    strings.TrimSpace(input.ShippingAddress.Phone),
			Email:    strings.TrimSpace(input.ShippingAddress.Email),
			Address:  strings.TrimSpace(input.ShippingAddress.Address),
			City:     strings.TrimSpace(input.ShippingAddress.City),
		},
		PaymentMethod: input.PaymentMethod,
		Note:          strings.TrimSpace(input.Note),
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TotalPrice:    itemsPrice + shippingPrice,
		OrderStatus:   enums.OrderStatusPending,
		OrderItems:    items,
	}

	if err := s.createWithCartClear(ctx, order, userCart.ID); err != nil {
		return orders.OrderDTO{}, err
	}

	created, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load created order")
	}
	return orders.ToDTO(*created), nil
}

// buildOrderItems freezes each cart line against the live product. Prices are
// copied so later catalog edits never rewrite order history.
func (s *service) buildOrderItems(cartItems []models.CartItem) ([]models.OrderItem, int64, error) {
	items := make([]models.OrderItem, 0, len(cartItems))
	var itemsPrice int64

	for _, line := range cartItems {
		product := line.Product
		if product == nil {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "product no longer exists")
		}
		if !product.InStock {
			return nil, 0, pkgerrors.New(
				pkgerrors.CodeInvalidState,
				fmt.Sprintf("Product %s is out of stock", product.Name),
			).WithDetails(map[string]any{"productId": product.ID})
		}

		items = append(items, models.OrderItem{
			ProductID:     product.ID,
			Name:          product.Name,
			Image:         product.Image,
			Price:         product.Price,
			Quantity:      line.Quantity,
			SelectedSize:  line.SelectedSize,
			SelectedColor: line.SelectedColor,
		})
		itemsPrice += product.Price * int64(line.Quantity)
	}

	return items, itemsPrice, nil
}

// shippingFor applies the free-shipping threshold. The boundary is strict:
// exactly the threshold still pays the fee.
func (s *service) shippingFor(itemsPrice int64) int64 {
	if itemsPrice > int64(s.pricing.FreeShippingThreshold) {
		return 0
	}
	return int64(s.pricing.ShippingFee)
}

func (s *service) createWithCartClear(ctx context.Context, order *models.Order, cartID uuid.UUID) error {
	var lastErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = s.newOrderNumber()

		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if _, err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
				return err
			}
			return s.cartRepo.ClearItems(ctx, tx, cartID)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if !db.IsUniqueViolation(err) {
			break
		}
		// Order number collided; reset generated IDs and retry with a new one.
		order.ID = uuid.Nil
		for i := range order.OrderItems {
			order.OrderItems[i].ID = uuid.Nil
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "place order")
}

func (s *service) newOrderNumber() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// Fall back to a uuid fragment; uniqueness is still enforced by the index.
		return fmt.Sprintf("ATN-%s-%s", s.now().UTC().Format("20060102"), uuid.NewString()[:8])
	}
	return fmt.Sprintf("ATN-%s-%s", s.now().UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(suffix)))
}

func validateInput(input PlaceOrderInput) error {
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", input.PaymentMethod))
	}
	addr := input.ShippingAddress
	for field, value := range map[string]string{
		"fullName": addr.FullName,
		"phone":    addr.Phone,
		"email":    addr.Email,
		"address":  addr.Address,
		"city":     addr.City,
	} {
		if strings.TrimSpace(value) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete").
				WithDetails(map[string]any{"field": field})
		}
	}
	return nil
}
