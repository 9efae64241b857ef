package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sivarmarket/storefront/internal/account"
	"github.com/sivarmarket/storefront/internal/simulate"
)

// AccountHandler handles the simulated registration/login flow
type AccountHandler struct {
	registry *account.Registry
	delay    time.Duration
	logger   *slog.Logger
}

// NewAccountHandler creates a new account handler. The delay simulates
// the verification step a real backend would perform.
func NewAccountHandler(reg *account.Registry, delay time.Duration, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		registry: reg,
		delay:    delay,
		logger:   logger,
	}
}

// RegisterRequest is the body of POST /api/account/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	DUI      string `json:"dui"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/account/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/account/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	outcome := simulate.Task(r.Context(), h.delay, func() (account.Account, error) {
		return h.registry.Register(req.Name, req.DUI, req.Email, req.Password)
	})

	result := <-outcome
	if result.Err != nil {
		h.writeAccountError(w, result.Err)
		return
	}

	h.logger.Info("account registered", "accountId", result.Value.ID)
	WriteJSON(w, http.StatusCreated, result.Value, h.logger)
}

// Login handles POST /api/account/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	outcome := simulate.Task(r.Context(), h.delay, func() (account.Account, error) {
		return h.registry.Login(req.Email, req.Password)
	})

	result := <-outcome
	if result.Err != nil {
		h.writeAccountError(w, result.Err)
		return
	}

	h.logger.Info("login successful", "accountId", result.Value.ID)
	WriteJSON(w, http.StatusOK, result.Value, h.logger)
}

func (h *AccountHandler) writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		WriteError(w, http.StatusConflict, err.Error(), h.logger)
	case errors.Is(err, account.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, err.Error(), h.logger)
	case errors.Is(err, account.ErrNameRequired),
		errors.Is(err, account.ErrInvalidDUI),
		errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrPasswordRequired):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Info("account request abandoned")
	default:
		h.logger.Error("account operation failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
