// Package handler is the HTTP presentation adapter over one storefront session.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CatalogReader is the read side of the state container.
type CatalogReader interface {
	StoreConfig() *model.StoreConfig
	Categories() []model.Category
	ActiveCategories() []model.Category
	FeaturedProducts() []model.Product
	SearchProducts(term, categoryID string) []model.Product
	Product(id string) (model.Product, bool)
	State() store.State
}

// CartStore is the session cart.
type CartStore interface {
	Product(id string) (model.Product, bool)
	Cart() []model.CartItem
	CartTotal() decimal.Decimal
	AddToCart(product model.Product, quantity int, notes string) error
	UpdateCartItem(productID string, quantity int)
	RemoveFromCart(productID string)
	ClearCart()
}

// CatalogWriter is the admin write side of the state container.
type CatalogWriter interface {
	Refresh(ctx context.Context) error
	UpdateStoreConfig(ctx context.Context, patch model.StoreConfigPatch) (*model.StoreConfig, error)
	AddCategory(ctx context.Context, in model.NewCategory) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	AddProduct(ctx context.Context, in model.NewProduct) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Watcher yields change notices.
type Watcher interface {
	Watch() (<-chan store.Change, func())
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps err onto a status code. Errors that carry no domain
// code are reported as a generic failure with fallback as the message.
func writeDomainError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Msg(fallback)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: model.ErrCodeInternalError, Message: fallback})
		return
	}

	writeError(w, statusFor(de.Code), de.Code, de.Message, logger)
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeImageTooLarge:
		return http.StatusRequestEntityTooLarge
	case model.ErrCodeStoreNotConfigured, model.ErrCodeNotLoaded:
		return http.StatusServiceUnavailable
	case model.ErrCodeInvalidJSON, model.ErrCodeInvalidInput, model.ErrCodeInvalidQuantity,
		model.ErrCodeEmptyCart, model.ErrCodeMissingCustomer, model.ErrCodeInvalidImage:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}
