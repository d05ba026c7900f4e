package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"storefront/internal/media"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Gate is the admin session gate.
type Gate interface {
	Login(ctx context.Context, password string) (bool, error)
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) (bool, error)
}

// LoginRequest carries the shared admin password.
type LoginRequest struct {
	Password string `json:"password"`
}

// SessionResponse reports the admin session flag.
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// UploadResponse carries the stored image URL.
type UploadResponse struct {
	URL string `json:"url"`
}

// multipart overhead allowed on top of the image itself
const uploadOverhead = 1 << 20

// AdminHandler handles catalog management.
type AdminHandler struct {
	gate     Gate
	catalog  CatalogWriter
	uploader media.Uploader
	logger   zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(gate Gate, catalog CatalogWriter, uploader media.Uploader, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		gate:     gate,
		catalog:  catalog,
		uploader: uploader,
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	ok, err := h.gate.Login(r.Context(), req.Password)
	if err != nil {
		writeDomainError(w, err, "failed to log in", h.logger)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid password", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{Authenticated: true})
}

// Logout handles POST /api/admin/logout.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Logout(r.Context()); err != nil {
		writeDomainError(w, err, "failed to log out", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Authenticated: false})
}

// Session handles GET /api/admin/session.
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	ok, err := h.gate.IsAuthenticated(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to read session", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Authenticated: ok})
}

// Refresh handles POST /api/admin/refresh.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		writeDomainError(w, err, err.Error(), h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateConfig handles PATCH /api/admin/config.
func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var patch model.StoreConfigPatch
	if !decodeJSON(w, r, &patch, h.logger) {
		return
	}

	cfg, err := h.catalog.UpdateStoreConfig(r.Context(), patch)
	if err != nil {
		writeDomainError(w, err, err.Error(), h.logger)
		return
	}
	if cfg == nil {
		writeDomainError(w, model.ErrStoreNotConfigured, "failed to update store configuration", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// CreateCategory handles POST /api/admin/categories.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in model.NewCategory
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}

	category, err := h.catalog.AddCategory(r.Context(), in)
	if err != nil {
		writeDomainError(w, err, err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles PATCH /api/admin/categories/{id}.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var patch model.CategoryPatch
	if !decodeJSON(w, r, &patch, h.logger) {
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, err, err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/admin/categories/{id}.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, err.Error(), h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateProduct handles POST /api/admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in model.NewProduct
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}

	product, err := h.catalog.AddProduct(r.Context(), in)
	if err != nil {
		writeDomainError(w, err, err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PATCH /api/admin/products/{id}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch model.ProductPatch
	if !decodeJSON(w, r, &patch, h.logger) {
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, err, err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/admin/products/{id}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, err.Error(), h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/admin/images with a multipart "file" field.
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+uploadOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDomainError(w, model.ErrImageTooLarge, "failed to upload image", h.logger)
			return
		}
		writeDomainError(w, model.ErrInvalidImage, "failed to upload image", h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, media.MaxImageSize+1))
	if err != nil {
		writeDomainError(w, err, "failed to read image", h.logger)
		return
	}

	img, err := media.NewImage(header.Filename, data)
	if err != nil {
		writeDomainError(w, err, "failed to upload image", h.logger)
		return
	}

	url, err := h.uploader.Upload(r.Context(), img)
	if err != nil {
		writeDomainError(w, err, "failed to upload image", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{URL: url})
}
