package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOrderHandler_Checkout(t *testing.T) {
	req := model.CheckoutRequest{CustomerName: "Ana", CustomerPhone: "11 98888-7777"}
	receipt := &model.OrderReceipt{
		Message: "🍔 *NOVO PEDIDO*",
		Link:    "https://wa.me/5511999999999?text=%F0%9F%8D%94",
	}

	tests := []struct {
		name           string
		body           any
		mockReturn     *model.OrderReceipt
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			body:           req,
			mockReturn:     receipt,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Empty cart",
			body:           req,
			mockError:      model.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeEmptyCart,
			expectService:  true,
		},
		{
			name:           "Missing customer",
			body:           model.CheckoutRequest{},
			mockError:      model.ErrMissingCustomer,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingCustomer,
			expectService:  true,
		},
		{
			name:           "Store not configured",
			body:           req,
			mockError:      model.ErrStoreNotConfigured,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   model.ErrCodeStoreNotConfigured,
			expectService:  true,
		},
		{
			name:           "Unexpected error",
			body:           req,
			mockError:      errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           "{",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			if tt.expectService {
				svc.On("Checkout", mock.Anything, mock.AnythingOfType("model.CheckoutRequest")).Return(tt.mockReturn, tt.mockError)
			}

			w := httptest.NewRecorder()
			NewOrderHandler(svc, zerolog.Nop()).Checkout(w, jsonRequest(t, http.MethodPost, "/api/checkout", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeBody[model.ErrorResponse](t, w).Error)
			} else {
				assert.Equal(t, receipt.Link, decodeBody[model.OrderReceipt](t, w).Link)
			}

			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderHandler_Preview(t *testing.T) {
	req := model.CheckoutRequest{CustomerName: "Ana", CustomerPhone: "11 98888-7777"}
	svc := new(MockOrderService)
	svc.On("Preview", mock.Anything, req).Return(&model.OrderReceipt{Message: "preview"}, nil)

	w := httptest.NewRecorder()
	NewOrderHandler(svc, zerolog.Nop()).Preview(w, jsonRequest(t, http.MethodPost, "/api/checkout/preview", req))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "preview", decodeBody[model.OrderReceipt](t, w).Message)
	svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
}
