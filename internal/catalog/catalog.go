package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sivarmarket/storefront/internal/event"
	"github.com/sivarmarket/storefront/internal/money"
)

var (
	// ErrProductNotFound is returned when a product id does not resolve.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidQuantity is returned for non-positive deduction quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// InsufficientStockError reports a deduction that would drive stock
// negative. Callers are expected to validate before deducting, so outside
// the commit path this indicates a programming fault, not user input.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Product is a catalog entry. Identity, name and price are immutable for
// the life of the session; stock is mutated only through DeductStock.
type Product struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price money.Cents `json:"price"`
	Stock int         `json:"stock"`
}

// Deduction is one line of a batch stock deduction.
type Deduction struct {
	ProductID string
	Quantity  int
}

// Catalog is the authoritative registry of products and their live stock.
// Iteration order is the seed insertion order, kept stable for rendering.
type Catalog struct {
	mu       sync.RWMutex
	order    []string
	products map[string]*Product
	changes  event.Notifier
}

// New creates a catalog seeded with the Sivar Market demo products.
func New() *Catalog {
	return NewWithProducts(seedProducts())
}

// NewWithProducts creates a catalog from an explicit product list,
// preserving the given order. Intended for tests that need isolated data.
func NewWithProducts(seed []Product) *Catalog {
	c := &Catalog{
		order:    make([]string, 0, len(seed)),
		products: make(map[string]*Product, len(seed)),
	}
	for _, p := range seed {
		if _, exists := c.products[p.ID]; exists {
			continue
		}
		prod := p
		c.order = append(c.order, p.ID)
		c.products[p.ID] = &prod
	}
	return c
}

// OnChange registers a callback invoked after every stock mutation.
func (c *Catalog) OnChange(fn func()) {
	c.changes.Subscribe(fn)
}

// Get returns a copy of the product with the given id.
func (c *Catalog) Get(id string) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return *p, nil
}

// Products returns copies of all products in seed order.
func (c *Catalog) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.products[id])
	}
	return out
}

// DeductStock decreases the stock of a single product. Stock never goes
// negative: a deduction larger than the available stock is rejected with
// InsufficientStockError and leaves the product untouched.
func (c *Catalog) DeductStock(id string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	p, ok := c.products[id]
	if !ok {
		c.mu.Unlock()
		return ErrProductNotFound
	}
	if qty > p.Stock {
		err := &InsufficientStockError{ProductID: id, Requested: qty, Available: p.Stock}
		c.mu.Unlock()
		return err
	}
	p.Stock -= qty
	c.mu.Unlock()

	c.changes.Notify()
	return nil
}

// DeductBatch applies a set of deductions atomically: every line is
// validated against live stock under one lock before anything is mutated.
// On any failure no stock changes and the offending line's error is
// returned. This is the commit path for a cart purchase.
func (c *Catalog) DeductBatch(lines []Deduction) error {
	if len(lines) == 0 {
		return nil
	}

	c.mu.Lock()
	for _, l := range lines {
		if l.Quantity <= 0 {
			c.mu.Unlock()
			return ErrInvalidQuantity
		}
		p, ok := c.products[l.ProductID]
		if !ok {
			c.mu.Unlock()
			return ErrProductNotFound
		}
		if l.Quantity > p.Stock {
			err := &InsufficientStockError{
				ProductID: l.ProductID,
				Requested: l.Quantity,
				Available: p.Stock,
			}
			c.mu.Unlock()
			return err
		}
	}
	for _, l := range lines {
		c.products[l.ProductID].Stock -= l.Quantity
	}
	c.mu.Unlock()

	c.changes.Notify()
	return nil
}

// seedProducts is the fixed 15-product demo inventory.
func seedProducts() []Product {
	return []Product{
		{ID: "P001", Name: "Aceite 1lt", Price: 310, Stock: 40},
		{ID: "P002", Name: "Agua (Galón)", Price: 150, Stock: 80},
		{ID: "P003", Name: "Sal Rosada 500g", Price: 220, Stock: 55},
		{ID: "P004", Name: "Arroz Blanco 2lb", Price: 190, Stock: 75},
		{ID: "P005", Name: "Arroz Precocido 2lb", Price: 210, Stock: 60},
		{ID: "P006", Name: "Azúcar Blanca 1kg", Price: 125, Stock: 100},
		{ID: "P007", Name: "Azúcar Morena 1kg", Price: 150, Stock: 80},
		{ID: "P008", Name: "Café Soluble 100g", Price: 350, Stock: 50},
		{ID: "P009", Name: "Elotes (Unidad)", Price: 75, Stock: 150},
		{ID: "P010", Name: "Frijoles Rojos 1lb", Price: 175, Stock: 80},
		{ID: "P011", Name: "Harina de Trigo 1kg", Price: 290, Stock: 50},
		{ID: "P012", Name: "Huevos (Docena)", Price: 275, Stock: 30},
		{ID: "P013", Name: "Leche Entera 1lt", Price: 145, Stock: 60},
		{ID: "P014", Name: "Pollo (lb)", Price: 400, Stock: 45},
		{ID: "P015", Name: "Carne de Res (lb)", Price: 550, Stock: 35},
	}
}
