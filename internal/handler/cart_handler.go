package handler

import (
	"net/http"

	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartHandler handles the session cart.
type CartHandler struct {
	cart   CartStore
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart CartStore, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

func (h *CartHandler) respond(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, model.CartResponse{
		Items:    h.cart.Cart(),
		Subtotal: h.cart.CartTotal(),
	})
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w)
}

// Add handles POST /api/cart. The product's current mirrored state is
// captured into the cart line.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.CartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	product, ok := h.cart.Product(req.ProductID)
	if !ok {
		writeDomainError(w, model.ErrNotFound, "failed to add to cart", h.logger)
		return
	}
	if !product.IsAvailable {
		writeDomainError(w, model.ErrInvalidInput("product is not available"), "failed to add to cart", h.logger)
		return
	}

	if err := h.cart.AddToCart(product, req.Quantity, req.Notes); err != nil {
		writeDomainError(w, err, "failed to add to cart", h.logger)
		return
	}

	h.respond(w)
}

// Update handles PUT /api/cart/{productID}. A quantity of zero or less
// removes the line.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.CartUpdateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	h.cart.UpdateCartItem(chi.URLParam(r, "productID"), req.Quantity)
	h.respond(w)
}

// Remove handles DELETE /api/cart/{productID}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.cart.RemoveFromCart(chi.URLParam(r, "productID"))
	h.respond(w)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart()
	h.respond(w)
}
