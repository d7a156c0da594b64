package checkout

import "github.com/atino-shop/atino-backend/pkg/enums"

// ShippingAddressInput carries the delivery destination for a new order.
type ShippingAddressInput struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
}

// PlaceOrderInput is the checkout request payload.
type PlaceOrderInput struct {
	ShippingAddress ShippingAddressInput `json:"shippingAddress" validate:"required"`
	PaymentMethod   enums.PaymentMethod  `json:"paymentMethod" validate:"required"`
	Note            string               `json:"note" validate:"max=500"`
}
