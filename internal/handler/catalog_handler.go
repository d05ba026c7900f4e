package handler

import (
	"net/http"
	"time"

	"storefront/internal/model"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CatalogResponse is the storefront landing payload.
type CatalogResponse struct {
	Config     *model.StoreConfig `json:"config"`
	OpenNow    bool               `json:"openNow"`
	Categories []model.Category   `json:"categories"`
	Featured   []model.Product    `json:"featured"`
}

// CatalogHandler serves the menu read from the session mirror.
type CatalogHandler struct {
	catalog CatalogReader
	now     func() time.Time
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog CatalogReader, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		now:     time.Now,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// Catalog handles GET /api/catalog.
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.State().Loaded {
		writeDomainError(w, model.ErrNotLoaded, "failed to load catalog", h.logger)
		return
	}

	cfg := h.catalog.StoreConfig()
	writeJSON(w, http.StatusOK, CatalogResponse{
		Config:     cfg,
		OpenNow:    cfg.IsOpenAt(h.now()),
		Categories: h.catalog.ActiveCategories(),
		Featured:   h.catalog.FeaturedProducts(),
	})
}

// Products handles GET /api/products?q=&category=.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.catalog.SearchProducts(q.Get("q"), q.Get("category")))
}

// Product handles GET /api/products/{id}.
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	p, ok := h.catalog.Product(chi.URLParam(r, "id"))
	if !ok {
		writeDomainError(w, model.ErrNotFound, "failed to retrieve product", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Categories handles GET /api/admin/categories, which includes inactive ones.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Categories())
}

// State handles GET /api/state.
func (h *CatalogHandler) State(w http.ResponseWriter, r *http.Request) {
	state := h.catalog.State()
	writeJSON(w, http.StatusOK, struct {
		store.State
		Stale bool `json:"stale"`
	}{State: state, Stale: state.Stale()})
}
