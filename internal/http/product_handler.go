package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/deisishop/internal/cart"
	"github.com/fjod/deisishop/internal/domain"
	"github.com/fjod/deisishop/internal/fetch"
	"github.com/fjod/deisishop/internal/view"
	"github.com/fjod/deisishop/internal/viewmodel"
)

type ProductHandler struct {
	catalog   fetch.Catalog
	loader    *fetch.Loader
	carts     *cart.Registry
	renderer  *view.Renderer
	projector *viewmodel.Projector
	timeout   time.Duration
}

func NewProductHandler(
	catalog fetch.Catalog,
	loader *fetch.Loader,
	carts *cart.Registry,
	renderer *view.Renderer,
	projector *viewmodel.Projector,
	timeout time.Duration,
) *ProductHandler {
	return &ProductHandler{
		catalog:   catalog,
		loader:    loader,
		carts:     carts,
		renderer:  renderer,
		projector: projector,
		timeout:   timeout,
	}
}

type ProductsResponse struct {
	Products []view.Card `json:"products"`
	Search   string      `json:"search"`
	Sort     string      `json:"sort"`
	Total    int         `json:"total"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	state := fetch.Products(h.loader, h.catalog).Load(ctx)
	if state.Status == fetch.StatusError {
		handleCatalogError(w, state.Err)
		return
	}
	h.respondProducts(w, r, state.Data)
}

// GET /api/v1/categories/{id}/products
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	category := chi.URLParam(r, "id")
	if category == "" {
		respondError(w, http.StatusBadRequest, "invalid_category", "category is required")
		return
	}

	state := fetch.CategoryProducts(h.loader, h.catalog, category).Load(ctx)
	if state.Status == fetch.StatusError {
		handleCatalogError(w, state.Err)
		return
	}
	h.respondProducts(w, r, state.Data)
}

// GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	state := fetch.Product(h.loader, h.catalog, chi.URLParam(r, "id")).Load(ctx)
	if state.Status == fetch.StatusError {
		handleCatalogError(w, state.Err)
		return
	}
	if state.Data == nil {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	respondJSON(w, http.StatusOK, h.renderer.Detail(*state.Data, h.cartState(r)))
}

// GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	state := fetch.Categories(h.loader, h.catalog).Load(ctx)
	if state.Status == fetch.StatusError {
		handleCatalogError(w, state.Err)
		return
	}

	categories := state.Data
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *ProductHandler) respondProducts(w http.ResponseWriter, r *http.Request, products []domain.Product) {
	query := r.URL.Query()

	vm := viewmodel.NewCatalog(h.projector)
	vm.SetProducts(products)
	vm.SetSearch(query.Get("search"))
	vm.SetSort(viewmodel.ParseSortKey(query.Get("sort")))

	visible := vm.Visible()

	respondJSON(w, http.StatusOK, ProductsResponse{
		Products: h.renderer.Cards(visible, h.cartState(r)),
		Search:   vm.Search(),
		Sort:     string(vm.Sort()),
		Total:    len(visible),
	})
}

// cartState reads the shopper's cart for the add/remove choice on cards
// without registering a store. Listings still render when the cart cannot be
// read; every card then shows as not in the cart.
func (h *ProductHandler) cartState(r *http.Request) view.CartState {
	ctx := r.Context()
	store, err := h.carts.Lookup(ctx, getSessionID(ctx))
	if err != nil {
		slog.WarnContext(ctx, "cart state unavailable for listing",
			"request_id", getRequestID(ctx),
			"session", getSessionID(ctx),
			"error", err)
		return nil
	}
	return store
}
