package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/httputil"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/service"
)

// CartHandler handles HTTP requests for the cart.
type CartHandler struct {
	cart   *service.CartStore
	cars   CarGateway
	logger *slog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *service.CartStore, cars CarGateway, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, cars: cars, logger: logger}
}

// AddItemRequest is the request body for adding a car to the cart.
type AddItemRequest struct {
	CarID    string `json:"carId" validate:"required"`
	Quantity *int   `json:"quantity,omitempty"`
}

// UpdateQuantityRequest is the request body for changing a line quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/v1/cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, presentCart(h.cart.Snapshot()))
}

// AddItem handles POST /api/v1/cart/items. The car is fetched from the
// backend so the cart keeps a complete copy.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeValid(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	car, err := h.cars.Get(r.Context(), req.CarID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.cart.Add(r.Context(), *car, quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presentCart(h.cart.Snapshot()))
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{carId}. A quantity of
// zero or less removes the line.
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "carId")
	if !h.cart.Contains(carID) {
		httputil.WriteError(w, r, apperrors.NotFound("cart item", carID), h.logger)
		return
	}

	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.cart.UpdateQuantity(r.Context(), carID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presentCart(h.cart.Snapshot()))
}

// RemoveItem handles DELETE /api/v1/cart/items/{carId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "carId")
	if !h.cart.Remove(r.Context(), carID) {
		httputil.WriteError(w, r, apperrors.NotFound("cart item", carID), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presentCart(h.cart.Snapshot()))
}

// ClearCart handles DELETE /api/v1/cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/v1/cart/checkout.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	summary, err := service.Checkout(h.cart.Snapshot())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, summary)
}
