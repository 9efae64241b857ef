package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sivarmarket/storefront/internal/catalog"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(cat *catalog.Catalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: cat,
		logger:  logger,
	}
}

// ListProducts handles GET /api/product
// Returns the full catalog in seed order, with live stock counts.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.catalog.Products(), h.logger)
}

// GetProduct handles GET /api/product/{productId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if productID == "" {
		h.logger.Warn("product ID is required")
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	product, err := h.catalog.Get(productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			h.logger.Info("product not found", "productId", productID)
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}

		h.logger.Error("failed to get product", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}
