package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/deisishop/internal/catalog"
	"github.com/fjod/deisishop/pkg/circuitbreaker"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// respondStorageError answers a request whose saved cart could not be read.
// Nothing is changed, so the shopper can retry.
func respondStorageError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	slog.ErrorContext(ctx, "cart storage unavailable",
		"request_id", getRequestID(ctx),
		"session", getSessionID(ctx),
		"error", err)
	respondError(w, http.StatusServiceUnavailable, "storage_unavailable", "cart storage is unavailable, try again later")
}

// handleCatalogError converts a failure talking to the remote shop into an
// HTTP status. The message is always the one a shopper should read.
func handleCatalogError(w http.ResponseWriter, err error) {
	var (
		httpStatus int
		code       string
		se         *catalog.StatusError
	)

	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		httpStatus = http.StatusBadRequest
		code = "invalid_id"
	case circuitbreaker.IsOpen(err):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	case errors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests:
		httpStatus = http.StatusTooManyRequests
		code = "rate_limit_exceeded"
	case errors.Is(err, catalog.ErrNotAList), errors.Is(err, catalog.ErrInvalidResponse):
		httpStatus = http.StatusBadGateway
		code = "invalid_response"
	default:
		httpStatus = http.StatusBadGateway
		code = "upstream_error"
	}

	respondError(w, httpStatus, code, err.Error())
}
