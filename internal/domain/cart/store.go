package cart

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
)

// Line is one product-and-quantity pair in the cart. Quantity is always at
// least 1.
type Line struct {
	Product  product.Product
	Quantity int
}

// Total returns the line price in base currency.
func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Store is the single source of truth for the in-progress order and the
// display currency of one shopper. It is safe for concurrent use.
//
// Lines keep insertion order and hold at most one entry per product ID.
type Store struct {
	notify feedback.Notifier

	mu       sync.RWMutex
	lines    []Line
	currency currency.Code
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier routes cart events to n.
func WithNotifier(n feedback.Notifier) Option {
	return func(s *Store) {
		s.notify = n
	}
}

// WithCurrency sets the initial display currency. Unsupported codes are ignored.
func WithCurrency(c currency.Code) Option {
	return func(s *Store) {
		if c.Valid() {
			s.currency = c
		}
	}
}

// NewStore returns an empty cart displaying prices in the base currency.
func NewStore(opts ...Option) *Store {
	s := &Store{
		notify:   feedback.Nop{},
		currency: currency.Base,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddItem increments the quantity of p by one, appending a new line when p
// is not in the cart yet. Stock is not checked.
func (s *Store) AddItem(p product.Product) {
	s.AddItems(p, 1)
}

// AddItems adds n units of p with a single notification. It is equivalent to
// n calls of AddItem otherwise. n below 1 is a no-op.
func (s *Store) AddItems(p product.Product, n int) {
	if n < 1 {
		return
	}

	s.mu.Lock()
	if i := s.index(p.ID); i >= 0 {
		s.lines[i].Quantity += n
	} else {
		s.lines = append(s.lines, Line{Product: p, Quantity: n})
	}
	s.mu.Unlock()

	desc := fmt.Sprintf("%s has been added to your cart.", p.Name)
	if n > 1 {
		desc = fmt.Sprintf("%d x %s added to your cart.", n, p.Name)
	}
	s.notify.Notify(feedback.Info("Added to Cart", desc))
}

// UpdateQuantity replaces the quantity of the line for id. A quantity below 1
// removes the line. Unknown ids are ignored.
func (s *Store) UpdateQuantity(id string, quantity int) {
	if quantity < 1 {
		s.RemoveItem(id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		s.lines[i].Quantity = quantity
	}
}

// RemoveItem deletes the line for id if present.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	i := s.index(id)
	if i >= 0 {
		s.lines = slices.Delete(s.lines, i, i+1)
	}
	s.mu.Unlock()

	if i >= 0 {
		s.notify.Notify(feedback.Info("Item Removed", "Item has been removed from your cart."))
	}
}

// Clear removes every line. The display currency is kept.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Deduct subtracts the quantities of ordered from the cart, dropping lines
// that reach zero. Units added after ordered was taken stay in the cart.
func (s *Store) Deduct(ordered []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range ordered {
		if i := s.index(o.Product.ID); i >= 0 {
			s.lines[i].Quantity -= o.Quantity
		}
	}
	s.lines = slices.DeleteFunc(s.lines, func(l Line) bool { return l.Quantity < 1 })
}

// SetCurrency changes the display currency. Codes outside the supported set
// are rejected and leave the cart unchanged.
func (s *Store) SetCurrency(c currency.Code) error {
	if !c.Valid() {
		return errors.Wrapf(currency.ErrUnsupported, "set currency %q", c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currency = c
	return nil
}

// Currency returns the display currency.
func (s *Store) Currency() currency.Code {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lines)
}

// Line returns the line for id.
func (s *Store) Line(id string) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(id); i >= 0 {
		return s.lines[i], true
	}
	return Line{}, false
}

// ItemCount returns the sum of all line quantities.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// Subtotal returns the sum of unit price times quantity over all lines, in
// base currency regardless of the display currency.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, l := range s.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// index returns the position of the line for id, or -1. Callers hold mu.
func (s *Store) index(id string) int {
	return slices.IndexFunc(s.lines, func(l Line) bool { return l.Product.ID == id })
}
