package cart

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/sivarmarket/storefront/internal/catalog"
	"github.com/sivarmarket/storefront/internal/money"
)

// Random operation sequences against a fresh catalog must preserve the
// engine invariants: stock never negative, one item per product id,
// every quantity positive, and the total always equal to the sum of the
// per-item subtotals.
func TestCart_Invariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cat := catalog.New()
		c := New(cat)

		ids := make([]string, 0, 15)
		for _, p := range cat.Products() {
			ids = append(ids, p.ID)
		}
		// Mix in an id that never resolves
		ids = append(ids, "P999")

		idGen := rapid.SampledFrom(ids)
		opGen := rapid.IntRange(0, 4)

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := idGen.Draw(t, "id")
			switch opGen.Draw(t, "op") {
			case 0:
				qty := rapid.IntRange(1, 40).Draw(t, "qty")
				err := c.AddItem(id, qty)
				var stockErr *StockExceededError
				if err != nil && !errors.Is(err, catalog.ErrProductNotFound) && !errors.As(err, &stockErr) {
					t.Fatalf("unexpected AddItem error: %v", err)
				}
			case 1:
				c.RemoveItem(id)
			case 2:
				c.RemoveItemCompletely(id)
			case 3:
				c.Clear()
			case 4:
				if err := c.CommitPurchase(); err != nil {
					t.Fatalf("commit must not fail in a single-actor run: %v", err)
				}
			}

			checkInvariants(t, c, cat)
		}
	})
}

func checkInvariants(t *rapid.T, c *Cart, cat *catalog.Catalog) {
	for _, p := range cat.Products() {
		if p.Stock < 0 {
			t.Fatalf("stock of %s went negative: %d", p.ID, p.Stock)
		}
	}

	seen := make(map[string]bool)
	var sum money.Cents
	for _, line := range c.Items() {
		if seen[line.ProductID] {
			t.Fatalf("duplicate cart item for product %s", line.ProductID)
		}
		seen[line.ProductID] = true

		if line.Quantity <= 0 {
			t.Fatalf("cart item %s has non-positive quantity %d", line.ProductID, line.Quantity)
		}
		if line.Subtotal != line.UnitPrice.Mul(line.Quantity) {
			t.Fatalf("subtotal mismatch for %s", line.ProductID)
		}
		sum += line.Subtotal
	}

	if total := c.Total(); total != sum {
		t.Fatalf("total %s != sum of subtotals %s", total, sum)
	}
}
