package store

import (
	"slices"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// AddToCart adds quantity of product to the cart. An existing item for the
// same product has its quantity increased and its notes replaced, even by
// an empty value. The product is stored as a snapshot, so later price edits
// do not change the cart.
func (c *Container) AddToCart(product model.Product, quantity int, notes string) error {
	if quantity < 1 {
		return model.ErrInvalidQuantity
	}

	c.mu.Lock()
	i := slices.IndexFunc(c.cart, func(item model.CartItem) bool { return item.Product.ID == product.ID })
	if i >= 0 {
		c.cart[i].Quantity += quantity
		c.cart[i].Notes = notes
	} else {
		c.cart = append(c.cart, model.CartItem{Product: product, Quantity: quantity, Notes: notes})
	}
	c.mu.Unlock()

	c.logger.Debug().Str("product_id", product.ID).Int("quantity", quantity).Msg("added to cart")
	c.notify(ScopeCart)
	return nil
}

// UpdateCartItem sets the quantity of a cart item; zero or less removes it.
func (c *Container) UpdateCartItem(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveFromCart(productID)
		return
	}

	c.mu.Lock()
	i := slices.IndexFunc(c.cart, func(item model.CartItem) bool { return item.Product.ID == productID })
	if i >= 0 {
		c.cart[i].Quantity = quantity
	}
	c.mu.Unlock()

	if i >= 0 {
		c.notify(ScopeCart)
	}
}

// RemoveFromCart removes the product's cart item, if present.
func (c *Container) RemoveFromCart(productID string) {
	c.mu.Lock()
	before := len(c.cart)
	c.cart = slices.DeleteFunc(c.cart, func(item model.CartItem) bool { return item.Product.ID == productID })
	removed := before != len(c.cart)
	c.mu.Unlock()

	if removed {
		c.notify(ScopeCart)
	}
}

// ClearCart empties the cart.
func (c *Container) ClearCart() {
	c.mu.Lock()
	c.cart = []model.CartItem{}
	c.mu.Unlock()

	c.notify(ScopeCart)
}

// Cart returns a copy of the cart items in the order they were added.
func (c *Container) Cart() []model.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.cart)
}

// CartTotal sums captured price times quantity over the cart.
func (c *Container) CartTotal() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return cartTotal(c.cart)
}

// CartCount returns the number of units in the cart.
func (c *Container) CartCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, item := range c.cart {
		count += item.Quantity
	}
	return count
}

func cartTotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
