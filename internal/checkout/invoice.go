package checkout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sivarmarket/storefront/internal/cart"
	"github.com/sivarmarket/storefront/internal/money"
)

var (
	ErrCustomerName    = errors.New("customer name is required")
	ErrCustomerDUI     = errors.New("customer DUI must match ########-#")
	ErrCustomerEmail   = errors.New("invalid customer email")
	ErrCustomerAddress = errors.New("customer address is required")
)

var (
	custDUIPattern   = regexp.MustCompile(`^\d{8}-\d$`)
	custEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Customer is the billing data captured at checkout.
type Customer struct {
	Name    string `json:"name"`
	DUI     string `json:"dui"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Validate applies the billing form rules.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrCustomerName
	}
	if !custDUIPattern.MatchString(c.DUI) {
		return ErrCustomerDUI
	}
	if !custEmailPattern.MatchString(c.Email) {
		return ErrCustomerEmail
	}
	if strings.TrimSpace(c.Address) == "" {
		return ErrCustomerAddress
	}
	return nil
}

// Invoice records a settled purchase: the customer, a copy of the cart
// lines at commit time, and the computed amounts. IVA is rounded half-up
// on the cent value; the grand total is subtotal plus IVA.
type Invoice struct {
	ID       string      `json:"id"`
	Number   string      `json:"number"`
	Customer Customer    `json:"customer"`
	Lines    []cart.Line `json:"lines"`
	IssuedAt time.Time   `json:"issuedAt"`
	Subtotal money.Cents `json:"subtotal"`
	Tax      money.Cents `json:"tax"`
	Total    money.Cents `json:"total"`
}

func newInvoice(cust Customer, lines []cart.Line, subtotal money.Cents, taxRatePercent int) *Invoice {
	now := time.Now()
	tax := subtotal.Percent(taxRatePercent)

	return &Invoice{
		ID:       uuid.New().String(),
		Number:   "FACT-" + now.Format("20060102-150405"),
		Customer: cust,
		Lines:    lines,
		IssuedAt: now,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// Text renders the invoice as printable plain text.
func (inv *Invoice) Text() string {
	var sb strings.Builder

	sb.WriteString("TIENDA SIVAR MARKET\n")
	fmt.Fprintf(&sb, "Factura No: %s\n", inv.Number)
	fmt.Fprintf(&sb, "Fecha: %s\n", inv.IssuedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "Cliente: %s  <%s>\n", inv.Customer.Name, inv.Customer.Email)
	fmt.Fprintf(&sb, "DUI: %s\n", inv.Customer.DUI)
	fmt.Fprintf(&sb, "Domicilio: %s\n", inv.Customer.Address)
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&sb, "%-24s %8s %12s %12s\n", "Producto", "Cant", "Precio", "Subtotal")
	for _, l := range inv.Lines {
		fmt.Fprintf(&sb, "%-24s %8d %12s %12s\n",
			l.Name, l.Quantity, l.UnitPrice.String(), l.Subtotal.String())
	}
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&sb, "%-24s %8s %12s %12s\n", "", "", "SUBTOTAL:", inv.Subtotal.String())
	fmt.Fprintf(&sb, "%-24s %8s %12s %12s\n", "", "", "IVA:", inv.Tax.String())
	fmt.Fprintf(&sb, "%-24s %8s %12s %12s\n", "", "", "TOTAL:", inv.Total.String())

	return sb.String()
}

// SaveTxt writes the plain-text invoice to dir, creating it if needed,
// and returns the file path.
func (inv *Invoice) SaveTxt(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create invoice dir: %w", err)
	}

	path := filepath.Join(dir, inv.Number+".txt")
	if err := os.WriteFile(path, []byte(inv.Text()), 0o644); err != nil {
		return "", fmt.Errorf("write invoice: %w", err)
	}
	return path, nil
}
