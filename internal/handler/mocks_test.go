package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/media"
	"storefront/internal/model"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCatalog is a mock implementation of CatalogReader, CartStore and CatalogWriter.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) StoreConfig() *model.StoreConfig {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.StoreConfig)
}

func (m *MockCatalog) Categories() []model.Category {
	return m.Called().Get(0).([]model.Category)
}

func (m *MockCatalog) ActiveCategories() []model.Category {
	return m.Called().Get(0).([]model.Category)
}

func (m *MockCatalog) FeaturedProducts() []model.Product {
	return m.Called().Get(0).([]model.Product)
}

func (m *MockCatalog) SearchProducts(term, categoryID string) []model.Product {
	return m.Called(term, categoryID).Get(0).([]model.Product)
}

func (m *MockCatalog) Product(id string) (model.Product, bool) {
	args := m.Called(id)
	return args.Get(0).(model.Product), args.Bool(1)
}

func (m *MockCatalog) State() store.State {
	return m.Called().Get(0).(store.State)
}

func (m *MockCatalog) Cart() []model.CartItem {
	return m.Called().Get(0).([]model.CartItem)
}

func (m *MockCatalog) CartTotal() decimal.Decimal {
	return m.Called().Get(0).(decimal.Decimal)
}

func (m *MockCatalog) AddToCart(product model.Product, quantity int, notes string) error {
	return m.Called(product, quantity, notes).Error(0)
}

func (m *MockCatalog) UpdateCartItem(productID string, quantity int) {
	m.Called(productID, quantity)
}

func (m *MockCatalog) RemoveFromCart(productID string) {
	m.Called(productID)
}

func (m *MockCatalog) ClearCart() {
	m.Called()
}

func (m *MockCatalog) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCatalog) UpdateStoreConfig(ctx context.Context, patch model.StoreConfigPatch) (*model.StoreConfig, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoreConfig), args.Error(1)
}

func (m *MockCatalog) AddCategory(ctx context.Context, in model.NewCategory) (*model.Category, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCatalog) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCatalog) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalog) AddProduct(ctx context.Context, in model.NewProduct) (*model.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalog) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalog) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Preview(ctx context.Context, req model.CheckoutRequest) (*model.OrderReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderReceipt), args.Error(1)
}

func (m *MockOrderService) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.OrderReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderReceipt), args.Error(1)
}

// MockGate is a mock implementation of Gate.
type MockGate struct {
	mock.Mock
}

func (m *MockGate) Login(ctx context.Context, password string) (bool, error) {
	args := m.Called(ctx, password)
	return args.Bool(0), args.Error(1)
}

func (m *MockGate) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGate) IsAuthenticated(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// MockUploader is a mock implementation of media.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, img media.Image) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

// jsonRequest builds a request with a JSON body and optional chi URL params
// given as key, value pairs.
func jsonRequest(t *testing.T, method, target string, body any, params ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return withParams(req, params...)
}

func withParams(req *http.Request, params ...string) *http.Request {
	if len(params) == 0 {
		return req
	}
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}
