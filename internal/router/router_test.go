package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/handler"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type loggedOut struct{}

func (loggedOut) IsAuthenticated(context.Context) (bool, error) { return false, nil }

func TestRouter(t *testing.T) {
	logger := zerolog.Nop()
	h := Handlers{
		Catalog: handler.NewCatalogHandler(nil, logger),
		Cart:    handler.NewCartHandler(nil, logger),
		Order:   handler.NewOrderHandler(nil, logger),
		Admin:   handler.NewAdminHandler(nil, nil, nil, logger),
		Events:  handler.NewEventsHandler(nil, logger),
	}
	mux := New(h, loggedOut{}, "storefront-test", logger)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "Preflight", method: http.MethodOptions, path: "/api/cart", expectedStatus: http.StatusNoContent},
		{name: "Admin write gated", method: http.MethodPost, path: "/api/admin/categories", expectedStatus: http.StatusUnauthorized},
		{name: "Admin delete gated", method: http.MethodDelete, path: "/api/admin/products/p1", expectedStatus: http.StatusUnauthorized},
		{name: "Image upload gated", method: http.MethodPost, path: "/api/admin/images", expectedStatus: http.StatusUnauthorized},
		{name: "Refresh gated", method: http.MethodPost, path: "/api/admin/refresh", expectedStatus: http.StatusUnauthorized},
		{name: "Unknown route", method: http.MethodGet, path: "/api/orders", expectedStatus: http.StatusNotFound},
		{name: "Wrong method", method: http.MethodPatch, path: "/api/checkout", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
