package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CartItem is a product snapshot taken when it was added to the cart.
// It lives only in the local session.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

// LineTotal returns the captured price times the quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartRequest represents the payload for adding a product to the cart.
type CartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

// CartUpdateRequest represents the payload for setting an item quantity.
type CartUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse represents the cart with its computed subtotal.
type CartResponse struct {
	Items    []CartItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CheckoutRequest carries the customer details collected at checkout.
type CheckoutRequest struct {
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	DeliveryAddress string `json:"deliveryAddress,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// Validate checks the mandatory customer fields.
func (r CheckoutRequest) Validate() error {
	if strings.TrimSpace(r.CustomerName) == "" || strings.TrimSpace(r.CustomerPhone) == "" {
		return ErrMissingCustomer
	}
	return nil
}

// Order is built at checkout from the cart and never stored.
type Order struct {
	Items           []CartItem      `json:"items"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	DeliveryAddress string          `json:"deliveryAddress,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	Total           decimal.Decimal `json:"total"`
}

// OrderReceipt is returned once the order message has been handed off.
type OrderReceipt struct {
	Order   Order  `json:"order"`
	Message string `json:"message"`
	Link    string `json:"link"`
}

// FormatPrice renders an amount the way the storefront displays it: R$ 18,90.
func FormatPrice(amount decimal.Decimal) string {
	return "R$ " + strings.Replace(amount.StringFixed(2), ".", ",", 1)
}
