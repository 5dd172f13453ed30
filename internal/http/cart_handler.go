package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/deisishop/internal/cart"
	"github.com/fjod/deisishop/internal/fetch"
	"github.com/fjod/deisishop/internal/view"
)

type CartHandler struct {
	catalog     fetch.Catalog
	loader      *fetch.Loader
	carts       *cart.Registry
	renderer    *view.Renderer
	timeout     time.Duration
	maxBodySize int64
}

func NewCartHandler(
	catalog fetch.Catalog,
	loader *fetch.Loader,
	carts *cart.Registry,
	renderer *view.Renderer,
	timeout time.Duration,
	maxBodySize int64,
) *CartHandler {
	return &CartHandler{
		catalog:     catalog,
		loader:      loader,
		carts:       carts,
		renderer:    renderer,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

// CartResponse is the cart as shown to the shopper. Warning is set when the
// change was applied but could not be saved.
type CartResponse struct {
	view.Cart
	Warning string `json:"warning,omitempty"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.carts.Lookup(r.Context(), getSessionID(r.Context()))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.render(r.Context(), store, nil))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	state := fetch.Product(h.loader, h.catalog, strconv.FormatInt(req.ProductID, 10)).Load(ctx)
	if state.Status == fetch.StatusError {
		handleCatalogError(w, state.Err)
		return
	}
	if state.Data == nil {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	store, err := h.carts.Get(ctx, getSessionID(r.Context()))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	errAdd := store.Add(ctx, *state.Data)
	respondJSON(w, http.StatusCreated, h.render(ctx, store, errAdd))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	store, err := h.carts.Get(ctx, getSessionID(r.Context()))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	errRemove := store.Remove(ctx, productID)
	respondJSON(w, http.StatusOK, h.render(ctx, store, errRemove))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, err := h.carts.Get(ctx, getSessionID(r.Context()))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	errClear := store.Clear(ctx)
	respondJSON(w, http.StatusOK, h.render(ctx, store, errClear))
}

func (h *CartHandler) render(ctx context.Context, store *cart.Store, persistErr error) CartResponse {
	resp := CartResponse{Cart: h.renderer.Cart(store.Lines(), store.ItemCount(), store.Total())}
	if persistErr != nil {
		slog.WarnContext(ctx, "cart change not saved",
			"request_id", getRequestID(ctx),
			"session", getSessionID(ctx),
			"error", persistErr)
		resp.Warning = "cart changed but could not be saved: " + persistErr.Error()
	}
	return resp
}
