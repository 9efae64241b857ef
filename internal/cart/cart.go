package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sivarmarket/storefront/internal/catalog"
	"github.com/sivarmarket/storefront/internal/event"
	"github.com/sivarmarket/storefront/internal/money"
)

// ErrInvalidQuantity is returned when AddItem is called with a
// non-positive quantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// StockExceededError reports an add that would put more units in the cart
// than the catalog has available. It is a user-facing rejection, not a
// fault; the cart is left unchanged.
type StockExceededError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("only %d units of %s available, requested %d",
		e.Available, e.ProductID, e.Requested)
}

// ProductSnapshot is the slice of product data a cart item holds on to:
// identity, name and unit price frozen at the time the item was first
// added. Live stock is always read from the catalog, never from here.
type ProductSnapshot struct {
	ID        string
	Name      string
	UnitPrice money.Cents
}

// Item associates a product snapshot with a requested quantity.
// An item with quantity <= 0 never exists; it is removed instead.
type Item struct {
	Product  ProductSnapshot
	Quantity int
}

// Subtotal is the item's price in cents: unit price times quantity.
// Integer cents make this exact regardless of call count or order.
func (it Item) Subtotal() money.Cents {
	return it.Product.UnitPrice.Mul(it.Quantity)
}

// Line is the presentation view of one cart item.
type Line struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	UnitPrice money.Cents `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
	Subtotal  money.Cents `json:"subtotal"`
}

// Cart is the per-session collection of selected products. Items keep
// insertion order and each product id appears at most once.
type Cart struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	items   []*Item
	changes event.Notifier
}

// New creates an empty cart bound to the given catalog.
func New(cat *catalog.Catalog) *Cart {
	return &Cart{catalog: cat}
}

// OnChange registers a callback invoked after every mutation of the cart.
// The callback receives no payload; consumers re-query the cart state.
func (c *Cart) OnChange(fn func()) {
	c.changes.Subscribe(fn)
}

func (c *Cart) find(productID string) *Item {
	for _, it := range c.items {
		if it.Product.ID == productID {
			return it
		}
	}
	return nil
}

// AddItem puts qty units of a product into the cart. The combined
// quantity (existing plus requested) is validated against the catalog's
// live stock; on rejection the cart is unchanged.
func (c *Cart) AddItem(productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	product, err := c.catalog.Get(productID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	existing := c.find(productID)
	desired := qty
	if existing != nil {
		desired += existing.Quantity
	}

	if desired > product.Stock {
		err := &StockExceededError{
			ProductID: productID,
			Requested: desired,
			Available: product.Stock,
		}
		c.mu.Unlock()
		return err
	}

	if existing != nil {
		existing.Quantity = desired
	} else {
		c.items = append(c.items, &Item{
			Product: ProductSnapshot{
				ID:        product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
			},
			Quantity: qty,
		})
	}
	c.mu.Unlock()

	c.changes.Notify()
	return nil
}

// RemoveItem decrements the matching item's quantity by one, dropping the
// item entirely when it reaches zero. Absent ids are a no-op.
func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	it := c.find(productID)
	if it == nil {
		c.mu.Unlock()
		return
	}

	it.Quantity--
	if it.Quantity <= 0 {
		c.drop(productID)
	}
	c.mu.Unlock()

	c.changes.Notify()
}

// RemoveItemCompletely drops the matching item regardless of quantity.
// Absent ids are a no-op.
func (c *Cart) RemoveItemCompletely(productID string) {
	c.mu.Lock()
	if c.find(productID) == nil {
		c.mu.Unlock()
		return
	}
	c.drop(productID)
	c.mu.Unlock()

	c.changes.Notify()
}

// drop removes the item in place, preserving order. Caller holds the lock.
func (c *Cart) drop(productID string) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.Product.ID != productID {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// Clear empties the cart. Clearing an already-empty cart is a no-op and
// emits no notification.
func (c *Cart) Clear() {
	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		return
	}
	c.items = nil
	c.mu.Unlock()

	c.changes.Notify()
}

// Len returns the number of distinct items in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Items returns the presentation rows for the current cart contents,
// in insertion order.
func (c *Cart) Items() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, Line{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			UnitPrice: it.Product.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}
	return lines
}

// Total sums all subtotals in integer cents. Rounding happens only when
// the value is formatted, so item order cannot change the result.
func (c *Cart) Total() money.Cents {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total money.Cents
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// CommitPurchase deducts every cart line from catalog stock and empties
// the cart. The deduction is atomic: all lines are validated against live
// stock before any stock changes, and on failure both cart and catalog
// are left exactly as they were.
func (c *Cart) CommitPurchase() error {
	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		return nil
	}

	lines := make([]catalog.Deduction, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, catalog.Deduction{
			ProductID: it.Product.ID,
			Quantity:  it.Quantity,
		})
	}

	if err := c.catalog.DeductBatch(lines); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("commit purchase: %w", err)
	}

	c.items = nil
	c.mu.Unlock()

	c.changes.Notify()
	return nil
}
