package promo

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
)

// ErrInvalidCode is matched by InvalidCodeError.
var ErrInvalidCode = errors.New("invalid promo code")

// InvalidCodeError indicates a code that is not in the promo table.
type InvalidCodeError struct {
	Code string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid promo code %q", e.Code)
}

func (e *InvalidCodeError) Is(target error) bool {
	return target == ErrInvalidCode
}

// Code is an applied promo code and the percentage it takes off the subtotal.
type Code struct {
	Code    string
	Percent decimal.Decimal
}

// Table maps normalized (upper-case) codes to discount percentages.
type Table map[string]decimal.Decimal

var hundred = decimal.NewFromInt(100)

// DefaultTable returns the promo codes shipped with the storefront.
func DefaultTable() Table {
	return Table{
		"FIRST10":   decimal.NewFromInt(10),
		"SAVE20":    decimal.NewFromInt(20),
		"WELCOME15": decimal.NewFromInt(15),
	}
}

// Validate checks that every percentage lies in [0, 100] and every code is
// already normalized.
func (t Table) Validate() error {
	for code, pct := range t {
		if code == "" || code != Normalize(code) {
			return errors.Errorf("promo code %q must be upper-case without spaces", code)
		}
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return errors.Errorf("promo code %s: percent %s out of range", code, pct)
		}
	}
	return nil
}

// Lookup resolves a user-entered code. Matching is case-insensitive.
func (t Table) Lookup(code string) (Code, error) {
	norm := Normalize(code)
	pct, ok := t[norm]
	if !ok {
		return Code{}, &InvalidCodeError{Code: code}
	}
	return Code{Code: norm, Percent: pct}, nil
}

// Normalize trims and upper-cases a user-entered code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Selection holds the single promo code applied to a cart. It is safe for
// concurrent use.
type Selection struct {
	table  Table
	notify feedback.Notifier

	mu      sync.Mutex
	applied *Code
}

// NewSelection creates an empty Selection backed by table.
func NewSelection(table Table, n feedback.Notifier) *Selection {
	if n == nil {
		n = feedback.Nop{}
	}
	return &Selection{table: table, notify: n}
}

// Apply looks up code and, when known, replaces the applied promo. Unknown
// codes leave the selection unchanged and return an *InvalidCodeError.
func (s *Selection) Apply(code string) (Code, error) {
	c, err := s.table.Lookup(code)
	if err != nil {
		s.notify.Notify(feedback.Destructive("Invalid Promo Code", "Please check your promo code and try again."))
		return Code{}, err
	}

	s.mu.Lock()
	s.applied = &c
	s.mu.Unlock()

	s.notify.Notify(feedback.Info("Promo Code Applied!", fmt.Sprintf("You saved %s%% on your order.", c.Percent)))
	return c, nil
}

// Applied returns the applied promo, if any.
func (s *Selection) Applied() (Code, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applied == nil {
		return Code{}, false
	}
	return *s.applied, true
}

// Remove clears the applied promo.
func (s *Selection) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = nil
}
