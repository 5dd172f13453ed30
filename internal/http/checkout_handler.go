package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/deisishop/internal/catalog"
	"github.com/fjod/deisishop/internal/checkout"
)

type CheckoutHandler struct {
	checkouts   *checkout.Registry
	timeout     time.Duration
	maxBodySize int64
}

func NewCheckoutHandler(checkouts *checkout.Registry, timeout time.Duration, maxBodySize int64) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts:   checkouts,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

type CheckoutRequestDTO struct {
	Student bool   `json:"student"`
	Coupon  string `json:"coupon"`
	Name    string `json:"name"`
}

type CheckoutResponseDTO struct {
	Status string `json:"status"`
	checkout.State
}

const (
	checkoutStatusEmpty     = "EMPTY_CART"
	checkoutStatusCompleted = "COMPLETED"
	checkoutStatusFailed    = "FAILED"
	checkoutStatusPending   = "IN_PROGRESS"
	checkoutStatusIdle      = "IDLE"
)

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	submitter, err := h.checkouts.Get(ctx, getSessionID(r.Context()))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	result, err := submitter.Buy(ctx, checkout.Options{
		Student: req.Student,
		Coupon:  req.Coupon,
		Name:    req.Name,
	})

	var se *catalog.StatusError
	switch {
	case errors.Is(err, checkout.ErrInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError:
		respondError(w, http.StatusUnprocessableEntity, "checkout_rejected", err.Error())
	case err != nil:
		handleCatalogError(w, err)
	case result == nil:
		respondJSON(w, http.StatusOK, CheckoutResponseDTO{Status: checkoutStatusEmpty, State: submitter.State()})
	default:
		respondJSON(w, http.StatusCreated, CheckoutResponseDTO{Status: checkoutStatusCompleted, State: submitter.State()})
	}
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	state := h.checkouts.State(getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, CheckoutResponseDTO{Status: statusOf(state), State: state})
}

func statusOf(s checkout.State) string {
	switch {
	case s.InFlight:
		return checkoutStatusPending
	case s.Error != "":
		return checkoutStatusFailed
	case len(s.Result) > 0:
		return checkoutStatusCompleted
	default:
		return checkoutStatusIdle
	}
}
