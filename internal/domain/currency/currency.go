// Package currency converts base-currency amounts into display strings.
//
// All stored prices are denominated in the base currency (INR). The display
// currency only affects formatting and is never used to change stored totals.
package currency

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Code is an ISO 4217 currency code from the supported set.
type Code string

// Supported currencies.
const (
	INR Code = "INR"
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
)

// Base is the currency all prices and totals are stored in.
const Base = INR

// ErrUnsupported is returned when a currency code is outside the supported set.
var ErrUnsupported = errors.New("unsupported currency")

// Codes lists the supported currencies in picker order.
func Codes() []Code {
	return []Code{INR, USD, EUR, GBP}
}

// Valid reports whether c belongs to the supported set.
func (c Code) Valid() bool {
	switch c {
	case INR, USD, EUR, GBP:
		return true
	default:
		return false
	}
}

// Parse validates s as a supported currency code.
func Parse(s string) (Code, error) {
	c := Code(s)
	if !c.Valid() {
		return "", errors.Wrapf(ErrUnsupported, "%q", s)
	}
	return c, nil
}

// Rate describes how to display amounts in one currency.
type Rate struct {
	// Rate multiplies a base-currency amount.
	Rate   decimal.Decimal
	Symbol string
	Name   string
}

// Table maps currency codes to display rates.
type Table map[Code]Rate

// DefaultTable returns the static conversion table shipped with the storefront.
func DefaultTable() Table {
	return Table{
		INR: {Rate: decimal.NewFromInt(1), Symbol: "₹", Name: "Indian Rupee"},
		USD: {Rate: decimal.RequireFromString("0.012"), Symbol: "$", Name: "US Dollar"},
		EUR: {Rate: decimal.RequireFromString("0.011"), Symbol: "€", Name: "Euro"},
		GBP: {Rate: decimal.RequireFromString("0.0095"), Symbol: "£", Name: "British Pound"},
	}
}

// Validate checks that the table has a base currency entry and that every
// entry belongs to the supported set with a positive rate.
func (t Table) Validate() error {
	if _, ok := t[Base]; !ok {
		return errors.Errorf("missing base currency %s", Base)
	}
	for code, r := range t {
		if !code.Valid() {
			return errors.Wrapf(ErrUnsupported, "%q", code)
		}
		if !r.Rate.IsPositive() {
			return errors.Errorf("currency %s: rate must be positive", code)
		}
		if r.Symbol == "" {
			return errors.Errorf("currency %s: symbol required", code)
		}
	}
	return nil
}

// Formatter renders base-currency amounts in a display currency.
type Formatter struct {
	table Table
	base  Rate
}

// NewFormatter creates a Formatter for the given table. A table without a base
// entry falls back to a 1:1 rupee rate.
func NewFormatter(t Table) *Formatter {
	base, ok := t[Base]
	if !ok {
		base = DefaultTable()[Base]
	}
	return &Formatter{table: t, base: base}
}

// Lookup returns the display rate for c. Unknown codes resolve to the base
// currency's symbol with a 1:1 rate.
func (f *Formatter) Lookup(c Code) Rate {
	if r, ok := f.table[c]; ok {
		return r
	}
	return Rate{Rate: decimal.NewFromInt(1), Symbol: f.base.Symbol, Name: f.base.Name}
}

// Convert returns amount expressed in c, unrounded.
func (f *Formatter) Convert(amount decimal.Decimal, c Code) decimal.Decimal {
	return amount.Mul(f.Lookup(c).Rate)
}

// Format converts amount into c and renders it with the currency symbol and
// two decimal places, e.g. "$10.79".
func (f *Formatter) Format(amount decimal.Decimal, c Code) string {
	r := f.Lookup(c)
	return r.Symbol + amount.Mul(r.Rate).StringFixed(2)
}
