package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sivarmarket/storefront/internal/account"
	"github.com/sivarmarket/storefront/pkg/logger"
)

func newAccountRouter(t *testing.T) *chi.Mux {
	t.Helper()

	log := logger.New("error")
	handler := NewAccountHandler(account.NewRegistry(), time.Millisecond, log)

	r := chi.NewRouter()
	r.Post("/api/account/register", handler.Register)
	r.Post("/api/account/login", handler.Login)
	return r
}

func TestAccountRegisterAndLogin(t *testing.T) {
	r := newAccountRouter(t)

	body := RegisterRequest{
		Name:     "Ana Martínez",
		DUI:      "12345678-9",
		Email:    "ana@example.com",
		Password: "secret123",
	}

	w := postJSON(t, r, "/api/account/register", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	// Duplicate registration conflicts
	w = postJSON(t, r, "/api/account/register", body)
	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", w.Code)
	}

	// Bad DUI is a validation failure
	bad := body
	bad.DUI = "nope"
	bad.Email = "otra@example.com"
	w = postJSON(t, r, "/api/account/register", bad)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	// Login round trip
	w = postJSON(t, r, "/api/account/login", LoginRequest{Email: "ana@example.com", Password: "secret123"})
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	w = postJSON(t, r, "/api/account/login", LoginRequest{Email: "ana@example.com", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}
