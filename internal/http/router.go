package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/deisishop/internal/cart"
	"github.com/fjod/deisishop/internal/checkout"
	"github.com/fjod/deisishop/internal/fetch"
	"github.com/fjod/deisishop/internal/view"
	"github.com/fjod/deisishop/internal/viewmodel"
)

type RouterConfig struct {
	Catalog        fetch.Catalog
	Loader         *fetch.Loader
	Carts          *cart.Registry
	Checkouts      *checkout.Registry
	Renderer       *view.Renderer
	Projector      *viewmodel.Projector
	RequestTimeout time.Duration
	MaxBodySize    int64
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Loader == nil {
		cfg.Loader = fetch.NewLoader()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	products := NewProductHandler(cfg.Catalog, cfg.Loader, cfg.Carts, cfg.Renderer, cfg.Projector, cfg.RequestTimeout)
	carts := NewCartHandler(cfg.Catalog, cfg.Loader, cfg.Carts, cfg.Renderer, cfg.RequestTimeout, cfg.MaxBodySize)
	checkouts := NewCheckoutHandler(cfg.Checkouts, cfg.RequestTimeout, cfg.MaxBodySize)

	r := chi.NewRouter()

	// Global middleware
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelInfo),
			NoColor: true,
		}))
	} else {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Get("/products", products.List)
		r.Get("/products/{id}", products.Get)
		r.Get("/categories", products.Categories)
		r.Get("/categories/{id}/products", products.ListByCategory)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Delete("/items/{product_id}", carts.RemoveItem)
		})

		r.Get("/checkout", checkouts.GetState)
		r.Post("/checkout", checkouts.Checkout)
	})

	return r
}
