package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sivarmarket/storefront/internal/catalog"
	"github.com/sivarmarket/storefront/internal/checkout"
)

// CheckoutHandler handles the simulated payment flow
type CheckoutHandler struct {
	processor *checkout.Processor
	logger    *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(p *checkout.Processor, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		processor: p,
		logger:    logger,
	}
}

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	Method   checkout.Method      `json:"method"`
	Card     checkout.CardDetails `json:"card"`
	Customer checkout.Customer    `json:"customer"`
}

// Checkout handles POST /api/checkout. The request blocks for the
// simulated processing delay; closing the connection abandons the
// payment before any stock is deducted.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode checkout request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	outcome, err := h.processor.Pay(r.Context(), req.Method, req.Card, req.Customer)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	result := <-outcome
	if result.Err != nil {
		if errors.Is(result.Err, context.Canceled) || errors.Is(result.Err, context.DeadlineExceeded) {
			// Client went away; nothing was committed and there is
			// nobody left to answer.
			h.logger.Info("checkout abandoned")
			return
		}
		h.writeCheckoutError(w, result.Err)
		return
	}

	WriteJSON(w, http.StatusOK, result.Value, h.logger)
}

func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	var insufficientErr *catalog.InsufficientStockError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		WriteError(w, http.StatusBadRequest, "Cart is empty", h.logger)
	case errors.Is(err, checkout.ErrUnknownMethod),
		errors.Is(err, checkout.ErrInvalidCardNumber),
		errors.Is(err, checkout.ErrInvalidCardExpiry),
		errors.Is(err, checkout.ErrInvalidCardCVV),
		errors.Is(err, checkout.ErrCustomerName),
		errors.Is(err, checkout.ErrCustomerDUI),
		errors.Is(err, checkout.ErrCustomerEmail),
		errors.Is(err, checkout.ErrCustomerAddress):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	case errors.As(err, &insufficientErr):
		// Should be unreachable in a single-session storefront: add-time
		// validation plus the atomic commit keep stock reconciled.
		h.logger.Error("stock invariant violated at commit",
			"productId", insufficientErr.ProductID,
			"requested", insufficientErr.Requested,
			"available", insufficientErr.Available,
		)
		WriteError(w, http.StatusConflict, "Stock changed before purchase completed", h.logger)
	default:
		h.logger.Error("checkout failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
