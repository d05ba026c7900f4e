package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order hand-off requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /api/checkout.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	receipt, err := h.service.Checkout(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "failed to place order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// Preview handles POST /api/checkout/preview. The cart is kept.
func (h *OrderHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	receipt, err := h.service.Preview(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "failed to preview order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}
