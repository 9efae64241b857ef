package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sivarmarket/storefront/internal/cart"
	"github.com/sivarmarket/storefront/internal/catalog"
	"github.com/sivarmarket/storefront/internal/money"
)

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	cart   *cart.Cart
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(c *cart.Cart, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		cart:   c,
		logger: logger,
	}
}

// AddItemRequest is the body of POST /api/cart/items.
// Quantity defaults to 1 when omitted, matching the storefront's
// single-click add.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartView is the full cart state returned to the client.
type CartView struct {
	Items        []cart.Line `json:"items"`
	Total        money.Cents `json:"total"`
	TotalDisplay string      `json:"totalDisplay"`
}

// StockExceededResponse carries the shortfall details so the client can
// tell the shopper how many units remain.
type StockExceededResponse struct {
	Error             string `json:"error"`
	ProductID         string `json:"productId"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableStock    int    `json:"availableStock"`
}

// View handles GET /api/cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.view(), h.logger)
}

func (h *CartHandler) view() CartView {
	total := h.cart.Total()
	return CartView{
		Items:        h.cart.Items(),
		Total:        total,
		TotalDisplay: total.Display(),
	}
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode add-item request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.cart.AddItem(req.ProductID, req.Quantity); err != nil {
		h.writeCartError(w, req.ProductID, err)
		return
	}

	h.logger.Info("item added to cart", "productId", req.ProductID, "quantity", req.Quantity)
	WriteJSON(w, http.StatusOK, h.view(), h.logger)
}

// Decrement handles POST /api/cart/items/{productId}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	h.cart.RemoveItem(productID)
	WriteJSON(w, http.StatusOK, h.view(), h.logger)
}

// Remove handles DELETE /api/cart/items/{productId}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	h.cart.RemoveItemCompletely(productID)
	WriteJSON(w, http.StatusOK, h.view(), h.logger)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	WriteJSON(w, http.StatusOK, h.view(), h.logger)
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, productID string, err error) {
	var stockErr *cart.StockExceededError

	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		h.logger.Info("product not found", "productId", productID)
		WriteError(w, http.StatusNotFound, "Product not found", h.logger)
	case errors.Is(err, cart.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "Quantity must be positive", h.logger)
	case errors.As(err, &stockErr):
		h.logger.Info("stock exceeded",
			"productId", stockErr.ProductID,
			"requested", stockErr.Requested,
			"available", stockErr.Available,
		)
		WriteJSON(w, http.StatusConflict, StockExceededResponse{
			Error:             "Not enough stock",
			ProductID:         stockErr.ProductID,
			RequestedQuantity: stockErr.Requested,
			AvailableStock:    stockErr.Available,
		}, h.logger)
	default:
		h.logger.Error("cart operation failed", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
