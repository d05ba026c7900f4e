package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Admin   *handler.AdminHandler
	Events  *handler.EventsHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, sessions middleware.SessionChecker, serviceName string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.Catalog.Catalog)
		r.Get("/products", h.Catalog.Products)
		r.Get("/products/{id}", h.Catalog.Product)
		r.Get("/state", h.Catalog.State)
		r.Get("/events", h.Events.Stream)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Post("/", h.Cart.Add)
			r.Delete("/", h.Cart.Clear)
			r.Put("/{productID}", h.Cart.Update)
			r.Delete("/{productID}", h.Cart.Remove)
		})

		r.Post("/checkout", h.Order.Checkout)
		r.Post("/checkout/preview", h.Order.Preview)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Admin.Login)
			r.Post("/logout", h.Admin.Logout)
			r.Get("/session", h.Admin.Session)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(sessions, logger))

				r.Post("/refresh", h.Admin.Refresh)
				r.Patch("/config", h.Admin.UpdateConfig)
				r.Get("/categories", h.Catalog.Categories)
				r.Post("/categories", h.Admin.CreateCategory)
				r.Patch("/categories/{id}", h.Admin.UpdateCategory)
				r.Delete("/categories/{id}", h.Admin.DeleteCategory)
				r.Post("/products", h.Admin.CreateProduct)
				r.Patch("/products/{id}", h.Admin.UpdateProduct)
				r.Delete("/products/{id}", h.Admin.DeleteProduct)
				r.Post("/images", h.Admin.UploadImage)
			})
		})
	})

	return otelhttp.NewHandler(r, serviceName,
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/health" && req.URL.Path != "/api/events"
		}),
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}
