// Package session keeps per-shopper storefront state between HTTP requests.
//
// A shopper is identified by an opaque session ID. Each session owns a cart,
// a promo selection, a wishlist, the current checkout (if any) and a buffer of
// feedback produced since the last response. Nothing is persisted: sessions
// idle for longer than the configured TTL are dropped.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/cart"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/checkout"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/order"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/pricing"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/promo"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/wishlist"
)

// Session is the state of one shopper.
type Session struct {
	ID       string
	Cart     *cart.Store
	Promos   *promo.Selection
	Wishlist *wishlist.List
	// Feedback collects events and navigation intents until the handler
	// drains them into a response.
	Feedback *feedback.Buffer

	registry *Registry
	sink     feedback.Sink

	mu        sync.Mutex
	checkout  *checkout.Session
	lastOrder *order.Order
	lastSeen  time.Time
}

// BeginCheckout starts a fresh checkout over the session cart, replacing any
// previous one. It fails with checkout.ErrInFlight while an order is being
// submitted and with checkout.ErrEmptyCart when there is nothing to buy.
func (s *Session) BeginCheckout() (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkout != nil && s.checkout.Processing() {
		return nil, checkout.ErrInFlight
	}

	r := s.registry
	cs, err := checkout.Begin(r.cfg.Checkout, s.Cart, s.Promos, r.gateway,
		checkout.WithNotifier(s.sink),
		checkout.WithNavigator(s.sink),
		checkout.WithConfirmer(s),
		checkout.WithClock(r.now),
	)
	if err != nil {
		s.checkout = nil
		return nil, err
	}
	s.checkout = cs
	return cs, nil
}

// Checkout returns the current checkout, if one was started.
func (s *Session) Checkout() (*checkout.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout, s.checkout != nil
}

// Quote prices the cart with the applied promo under the same policy that
// checkout charges.
func (s *Session) Quote() pricing.Quote {
	var applied *promo.Code
	if c, ok := s.Promos.Applied(); ok {
		applied = &c
	}
	return s.registry.cfg.Checkout.Pricing.Quote(s.Cart.Subtotal(), applied)
}

// Busy reports whether an order submission is in flight. The cart and promo
// must not change while it is.
func (s *Session) Busy() bool {
	cs, ok := s.Checkout()
	return ok && cs.Processing()
}

// LastOrder returns the most recently placed order.
func (s *Session) LastOrder() (*order.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOrder, s.lastOrder != nil
}

// Confirm records o as the last order and forwards it to the registry
// confirmer.
func (s *Session) Confirm(ctx context.Context, o *order.Order) {
	s.mu.Lock()
	s.lastOrder = o
	s.mu.Unlock()

	s.registry.confirmer.Confirm(ctx, o)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// idleSince reports when the session was last used, and whether it is busy
// submitting an order.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	lastSeen := s.lastSeen
	s.mu.Unlock()
	return lastSeen, s.Busy()
}
