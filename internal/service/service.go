package service

import (
	"context"

	"storefront/internal/model"
)

// CartSource is the session state checkout reads and clears.
type CartSource interface {
	StoreConfig() *model.StoreConfig
	Cart() []model.CartItem
	ClearCart()
}

// OrderService defines operations for order hand-off.
type OrderService interface {
	// Preview builds the order and its message from the current cart
	// without clearing it.
	Preview(ctx context.Context, req model.CheckoutRequest) (*model.OrderReceipt, error)

	// Checkout builds the order, renders the WhatsApp message and deep link,
	// and clears the cart.
	Checkout(ctx context.Context, req model.CheckoutRequest) (*model.OrderReceipt, error)
}
