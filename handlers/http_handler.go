// Package handlers provides the HTTP handlers of the demo API: the catalogue,
// the cart endpoints that feed the items_in_cart gauge, and health.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/giygas/appmetrics/interfaces"
	"github.com/giygas/appmetrics/logging"
	"github.com/giygas/appmetrics/metrics"
	"github.com/giygas/appmetrics/validation"
	"github.com/go-chi/chi/v5"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)


// maxPostDelay bounds the simulated processing time of POST /api/data
const maxPostDelay = 100 * time.Millisecond

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	healthChecker interfaces.HealthChecker
	metrics       *metrics.AppMetrics

	maxDelay  time.Duration
	postDelay time.Duration
	randDelay func(max time.Duration) time.Duration
}

// NewHTTPHandler creates a handler. maxDelay bounds the simulated processing
// time of the data endpoints; 0 answers immediately.
func NewHTTPHandler(dataStore interfaces.DataStore, healthChecker interfaces.HealthChecker, m *metrics.AppMetrics, maxDelay time.Duration) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		healthChecker: healthChecker,
		metrics:       m,
		maxDelay:      maxDelay,
		postDelay:     min(maxPostDelay, maxDelay),
		randDelay:     randomDelay,
	}
}

func randomDelay(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return rand.N(max)
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// wait sleeps for d unless ctx ends first
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func timestamp() string {
	return time.Now().UTC().Format(interfaces.TimestampLayout)
}

// ServeIndex lists the available endpoints
func (h *HTTPHandlerImpl) ServeIndex(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to the Sample App with Prometheus Metrics!",
		"endpoints": map[string]string{
			"home":    "/",
			"health":  "/health",
			"api":     "/api/data",
			"cart":    "/api/cart/{userId}",
			"metrics": "/metrics",
		},
	})
}

// HealthCheck reports the service status
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.healthChecker.HealthCheck()

	response := make(map[string]any, len(details)+1)
	for k, v := range details {
		response[k] = v
	}
	response["status"] = status

	h.RespondWithJSON(w, httpStatus, response)
}

// GetData returns the catalogue after a simulated processing delay
func (h *HTTPHandlerImpl) GetData(w http.ResponseWriter, r *http.Request) {
	if err := wait(r.Context(), h.randDelay(h.maxDelay)); err != nil {
		logging.Debug("Request cancelled while processing", "path", r.URL.Path, "error", err)
		h.RespondWithError(w, http.StatusServiceUnavailable, "Request cancelled")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"data":      h.dataStore.GetItems(),
		"timestamp": timestamp(),
	})
}

// PostData echoes the posted JSON document back with 201
func (h *HTTPHandlerImpl) PostData(w http.ResponseWriter, r *http.Request) {
	var payload any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if !errors.Is(err, io.EOF) {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		payload = map[string]any{}
	}

	if err := wait(r.Context(), h.postDelay); err != nil {
		logging.Debug("Request cancelled while processing", "path", r.URL.Path, "error", err)
		h.RespondWithError(w, http.StatusServiceUnavailable, "Request cancelled")
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message":   "Data created successfully",
		"data":      payload,
		"timestamp": timestamp(),
	})
}

type cartRequest struct {
	Items *float64 `json:"items"`
}

// UpdateCart stores the number of items in a user's cart and mirrors it in
// the items_in_cart gauge. A body without "items" changes nothing.
func (h *HTTPHandlerImpl) UpdateCart(w http.ResponseWriter, r *http.Request) {
	userID, err := validation.ValidateUserID(chi.URLParam(r, "userId"))
	if err != nil {
		logging.Warn("Unusual user input", "userId", chi.URLParam(r, "userId"))
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	response := map[string]any{
		"message":   fmt.Sprintf("Cart updated for user %s", userID),
		"timestamp": timestamp(),
	}

	if req.Items != nil {
		items, err := validation.ValidateItems(*req.Items)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := h.metrics.SetItemsInCart(userID, float64(items)); err != nil {
			logging.Error("Failed to update cart gauge", "user_id", userID, "error", err)
			h.RespondWithError(w, http.StatusInternalServerError, "Failed to update cart")
			return
		}
		h.dataStore.SetCart(userID, items)
		response["items"] = items
	}

	h.RespondWithJSON(w, http.StatusOK, response)
}

// GetCart returns the number of items in a user's cart
func (h *HTTPHandlerImpl) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := validation.ValidateUserID(chi.URLParam(r, "userId"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, ok := h.dataStore.GetCart(userID)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "Cart not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"items":   items,
	})
}
