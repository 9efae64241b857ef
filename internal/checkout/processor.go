package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sivarmarket/storefront/internal/cart"
	"github.com/sivarmarket/storefront/internal/simulate"
)

// Method selects how the simulated payment is made.
type Method string

const (
	MethodCard   Method = "card"
	MethodPayPal Method = "paypal"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnknownMethod     = errors.New("unknown payment method")
	ErrInvalidCardNumber = errors.New("card number must be 12-16 digits")
	ErrInvalidCardExpiry = errors.New("card expiry must match MM/YY")
	ErrInvalidCardCVV    = errors.New("card CVV must be 3 or 4 digits")
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{12,16}$`)
	cardExpiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cardCVVPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// CardDetails carries the card form fields. Spaces in the number are
// tolerated and stripped before validation.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// ValidateCard applies the storefront's card format rules.
func ValidateCard(d CardDetails) error {
	number := strings.ReplaceAll(d.Number, " ", "")
	if !cardNumberPattern.MatchString(number) {
		return ErrInvalidCardNumber
	}
	if !cardExpiryPattern.MatchString(d.Expiry) {
		return ErrInvalidCardExpiry
	}
	if !cardCVVPattern.MatchString(d.CVV) {
		return ErrInvalidCardCVV
	}
	return nil
}

// Options configures a payment processor.
type Options struct {
	// Delay is the simulated gateway processing time.
	Delay time.Duration
	// TaxRatePercent is the IVA rate applied on top of the cart total.
	TaxRatePercent int
	// InvoiceDir, when set, receives a plain-text copy of every invoice.
	InvoiceDir string
}

// Processor runs the simulated payment flow: validate the request, wait
// out the gateway delay, then commit the purchase and issue an invoice.
// The commit is only ever reached when the simulated step resolves; an
// abandoned payment leaves cart and catalog untouched.
type Processor struct {
	cart *cart.Cart
	opts Options
	log  *slog.Logger
}

// NewProcessor creates a payment processor over the given cart.
func NewProcessor(c *cart.Cart, opts Options, log *slog.Logger) *Processor {
	return &Processor{cart: c, opts: opts, log: log}
}

// Pay starts the simulated payment. Validation failures are returned
// immediately; otherwise the outcome arrives on the returned channel
// after the processing delay. Cancelling ctx abandons the payment before
// the purchase commits.
func (p *Processor) Pay(ctx context.Context, method Method, card CardDetails, cust Customer) (<-chan simulate.Result[*Invoice], error) {
	if p.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	switch method {
	case MethodCard:
		if err := ValidateCard(card); err != nil {
			return nil, err
		}
	case MethodPayPal:
		// No form fields to check.
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	if err := cust.Validate(); err != nil {
		return nil, err
	}

	return simulate.Task(ctx, p.opts.Delay, func() (*Invoice, error) {
		return p.settle(method, cust)
	}), nil
}

// settle captures the cart contents, deducts stock and builds the
// invoice. Runs once the simulated gateway has "approved" the payment.
func (p *Processor) settle(method Method, cust Customer) (*Invoice, error) {
	lines := p.cart.Items()
	subtotal := p.cart.Total()

	if err := p.cart.CommitPurchase(); err != nil {
		return nil, err
	}

	inv := newInvoice(cust, lines, subtotal, p.opts.TaxRatePercent)

	p.log.Info("payment processed",
		"method", string(method),
		"invoice", inv.Number,
		"total", inv.Total.Display(),
	)

	if p.opts.InvoiceDir != "" {
		path, err := inv.SaveTxt(p.opts.InvoiceDir)
		if err != nil {
			// The sale already settled; a failed export is only logged.
			p.log.Error("failed to save invoice", "invoice", inv.Number, "error", err)
		} else {
			p.log.Info("invoice saved", "path", path)
		}
	}

	return inv, nil
}
