package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is a currency amount in integer minor units (USD cents).
// All arithmetic in the engine happens on this type; decimal strings
// appear only at the display boundary.
type Cents int64

// FromFloat converts a dollar amount to cents, rounding half-up at the
// cent boundary.
func FromFloat(dollars float64) Cents {
	return Cents(math.Floor(dollars*100 + 0.5))
}

// Mul returns the amount for qty units priced at c each.
// Integer multiplication is exact; no rounding takes place.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// Percent applies a whole-number percentage rate, rounding half-up
// on the resulting cent value.
func (c Cents) Percent(rate int) Cents {
	return Cents((int64(c)*int64(rate) + 50) / 100)
}

// String formats the amount with exactly two decimals, e.g. "7.45".
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Display formats the amount for the UI, e.g. "$7.45".
func (c Cents) Display() string {
	return "$" + c.String()
}

// MarshalJSON emits the amount as a two-decimal JSON number (3.10),
// matching what a storefront client expects for a price field.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	dollars, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	*c = FromFloat(dollars)
	return nil
}
