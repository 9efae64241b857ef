package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sivarmarket/storefront/internal/cart"
	"github.com/sivarmarket/storefront/internal/catalog"
	"github.com/sivarmarket/storefront/internal/checkout"
	"github.com/sivarmarket/storefront/pkg/logger"
)

func newCheckoutRouter(t *testing.T) (*chi.Mux, *cart.Cart, *catalog.Catalog) {
	t.Helper()

	cat := catalog.New()
	c := cart.New(cat)
	log := logger.New("error")
	processor := checkout.NewProcessor(c, checkout.Options{
		Delay:          time.Millisecond,
		TaxRatePercent: 13,
	}, log)
	handler := NewCheckoutHandler(processor, log)

	r := chi.NewRouter()
	r.Post("/api/checkout", handler.Checkout)

	return r, c, cat
}

func validCheckoutRequest() CheckoutRequest {
	return CheckoutRequest{
		Method: checkout.MethodCard,
		Card: checkout.CardDetails{
			Number: "4111111111111111",
			Expiry: "12/27",
			CVV:    "123",
		},
		Customer: checkout.Customer{
			Name:    "Ana Martínez",
			DUI:     "12345678-9",
			Email:   "ana@example.com",
			Address: "Col. Escalón, San Salvador",
		},
	}
}

func TestCheckout_Success(t *testing.T) {
	r, c, cat := newCheckoutRouter(t)

	if err := c.AddItem("P001", 2); err != nil {
		t.Fatalf("failed to add item: %v", err)
	}
	if err := c.AddItem("P006", 1); err != nil {
		t.Fatalf("failed to add item: %v", err)
	}

	data, _ := json.Marshal(validCheckoutRequest())
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(data))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var inv checkout.Invoice
	if err := json.NewDecoder(w.Body).Decode(&inv); err != nil {
		t.Fatalf("failed to decode invoice: %v", err)
	}

	if inv.Subtotal.String() != "7.45" {
		t.Errorf("expected subtotal 7.45, got %s", inv.Subtotal)
	}
	if inv.Total.String() != "8.42" {
		t.Errorf("expected total 8.42, got %s", inv.Total)
	}
	if len(inv.Lines) != 2 {
		t.Errorf("expected 2 invoice lines, got %d", len(inv.Lines))
	}

	// The purchase committed: stock deducted, cart empty
	p1, err := cat.Get("P001")
	if err != nil {
		t.Fatalf("failed to get product: %v", err)
	}
	if p1.Stock != 38 {
		t.Errorf("expected P001 stock 38, got %d", p1.Stock)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cart after checkout, got %d items", c.Len())
	}
}

func TestCheckout_Errors(t *testing.T) {
	tests := []struct {
		name       string
		prepare    func(c *cart.Cart)
		mutate     func(req *CheckoutRequest)
		wantStatus int
	}{
		{
			name:       "empty cart",
			prepare:    func(c *cart.Cart) {},
			mutate:     func(req *CheckoutRequest) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown method",
			prepare:    func(c *cart.Cart) { _ = c.AddItem("P001", 1) },
			mutate:     func(req *CheckoutRequest) { req.Method = "bitcoin" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid card number",
			prepare:    func(c *cart.Cart) { _ = c.AddItem("P001", 1) },
			mutate:     func(req *CheckoutRequest) { req.Card.Number = "123" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid customer dui",
			prepare:    func(c *cart.Cart) { _ = c.AddItem("P001", 1) },
			mutate:     func(req *CheckoutRequest) { req.Customer.DUI = "bad" },
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c, cat := newCheckoutRouter(t)
			tt.prepare(c)

			reqBody := validCheckoutRequest()
			tt.mutate(&reqBody)

			data, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(data))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}

			// Nothing committed on rejection
			for _, p := range cat.Products() {
				if p.ID == "P001" && p.Stock != 40 {
					t.Errorf("expected stock untouched, got %d", p.Stock)
				}
			}
		})
	}
}

func TestCheckout_InvalidBody(t *testing.T) {
	r, _, _ := newCheckoutRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}
