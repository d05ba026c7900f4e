package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCartHandler_Add(t *testing.T) {
	burger := model.Product{ID: "p1", Name: "X-Burger", Price: decimal.RequireFromString("18.90"), IsAvailable: true}
	soldOut := model.Product{ID: "p2", Name: "Brownie", Price: decimal.RequireFromString("14.90")}

	tests := []struct {
		name           string
		body           any
		setupMock      func(m *MockCatalog)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: model.CartRequest{ProductID: "p1", Quantity: 2, Notes: "sem cebola"},
			setupMock: func(m *MockCatalog) {
				m.On("Product", "p1").Return(burger, true)
				m.On("AddToCart", burger, 2, "sem cebola").Return(nil)
				m.On("Cart").Return([]model.CartItem{{Product: burger, Quantity: 2, Notes: "sem cebola"}})
				m.On("CartTotal").Return(decimal.RequireFromString("37.80"))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Unknown product",
			body: model.CartRequest{ProductID: "ghost", Quantity: 1},
			setupMock: func(m *MockCatalog) {
				m.On("Product", "ghost").Return(model.Product{}, false)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeNotFound,
		},
		{
			name: "Unavailable product",
			body: model.CartRequest{ProductID: "p2", Quantity: 1},
			setupMock: func(m *MockCatalog) {
				m.On("Product", "p2").Return(soldOut, true)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidInput,
		},
		{
			name: "Invalid quantity",
			body: model.CartRequest{ProductID: "p1", Quantity: 0},
			setupMock: func(m *MockCatalog) {
				m.On("Product", "p1").Return(burger, true)
				m.On("AddToCart", burger, 0, "").Return(model.ErrInvalidQuantity)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidQuantity,
		},
		{
			name:           "Invalid JSON",
			body:           "{not json",
			setupMock:      func(m *MockCatalog) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := new(MockCatalog)
			tt.setupMock(cart)

			w := httptest.NewRecorder()
			NewCartHandler(cart, zerolog.Nop()).Add(w, jsonRequest(t, http.MethodPost, "/api/cart", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeBody[model.ErrorResponse](t, w).Error)
			} else {
				resp := decodeBody[model.CartResponse](t, w)
				assert.Len(t, resp.Items, 1)
				assert.Equal(t, "37.80", resp.Subtotal.StringFixed(2))
			}
			cart.AssertExpectations(t)
		})
	}
}

func TestCartHandler_UpdateRemoveClear(t *testing.T) {
	cart := new(MockCatalog)
	cart.On("UpdateCartItem", "p1", 0).Return().Once()
	cart.On("RemoveFromCart", "p2").Return().Once()
	cart.On("ClearCart").Return().Once()
	cart.On("Cart").Return([]model.CartItem{})
	cart.On("CartTotal").Return(decimal.Zero)
	h := NewCartHandler(cart, zerolog.Nop())

	w := httptest.NewRecorder()
	h.Update(w, jsonRequest(t, http.MethodPut, "/api/cart/p1", model.CartUpdateRequest{Quantity: 0}, "productID", "p1"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Remove(w, jsonRequest(t, http.MethodDelete, "/api/cart/p2", nil, "productID", "p2"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Clear(w, jsonRequest(t, http.MethodDelete, "/api/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Get(w, jsonRequest(t, http.MethodGet, "/api/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[model.CartResponse](t, w).Items)

	cart.AssertExpectations(t)
	cart.AssertNumberOfCalls(t, "Cart", 4)
}

func TestCartHandler_UpdateInvalidBody(t *testing.T) {
	cart := new(MockCatalog)

	w := httptest.NewRecorder()
	NewCartHandler(cart, zerolog.Nop()).Update(w, jsonRequest(t, http.MethodPut, "/api/cart/p1", "nope", "productID", "p1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	cart.AssertNotCalled(t, "UpdateCartItem", mock.Anything, mock.Anything)
}
