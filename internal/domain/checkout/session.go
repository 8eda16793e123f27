// Package checkout implements the three-step checkout wizard.
//
// A Session moves linearly Shipping -> Payment -> Review. Forward moves are
// guarded by field validation, backward moves are always allowed and keep the
// entered values. PlaceOrder charges the injected Gateway from Review and
// either completes the session or leaves it at Review for another attempt.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/cart"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/order"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/pricing"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/promo"
)

// Step is a checkout wizard state.
type Step int

const (
	StepShipping Step = iota + 1
	StepPayment
	StepReview
	// StepComplete is entered once payment succeeded; the session is spent.
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Charge is a payment request sent to the Gateway.
type Charge struct {
	Reference string
	Amount    decimal.Decimal
	Method    Method
}

// Gateway charges the shopper. A nil error means the payment was accepted.
type Gateway interface {
	Charge(ctx context.Context, c Charge) error
}

// Config holds checkout parameters injected at construction.
type Config struct {
	Pricing         pricing.Policy
	ReferencePrefix string
	DefaultCountry  string
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier routes checkout events to n.
func WithNotifier(n feedback.Notifier) Option {
	return func(s *Session) { s.notify = n }
}

// WithNavigator routes navigation intents to n.
func WithNavigator(n feedback.Navigator) Option {
	return func(s *Session) { s.nav = n }
}

// WithConfirmer hands successful orders to c.
func WithConfirmer(c order.Confirmer) Option {
	return func(s *Session) { s.confirmer = c }
}

// WithClock overrides the clock used for order references.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is one visit to the checkout flow. It is safe for concurrent use.
type Session struct {
	cart      *cart.Store
	promos    *promo.Selection
	gateway   Gateway
	policy    pricing.Policy
	prefix    string
	notify    feedback.Notifier
	nav       feedback.Navigator
	confirmer order.Confirmer
	now       func() time.Time

	mu         sync.Mutex
	step       Step
	address    Address
	payment    Payment
	processing bool
	placed     *order.Order
}

// Begin starts a checkout over c. It refuses to start on an empty cart and
// asks the client to navigate back to the cart instead.
func Begin(cfg Config, c *cart.Store, promos *promo.Selection, gw Gateway, opts ...Option) (*Session, error) {
	s := &Session{
		cart:      c,
		promos:    promos,
		gateway:   gw,
		policy:    cfg.Pricing,
		prefix:    cfg.ReferencePrefix,
		notify:    feedback.Nop{},
		nav:       feedback.Nop{},
		confirmer: nopConfirmer{},
		now:       time.Now,
		step:      StepShipping,
		payment:   Payment{Method: MethodCard},
	}
	for _, o := range opts {
		o(s)
	}
	if s.prefix == "" {
		s.prefix = order.DefaultReferencePrefix
	}
	s.address.Country = cfg.DefaultCountry
	if s.address.Country == "" {
		s.address.Country = DefaultCountry
	}

	if c.IsEmpty() {
		s.nav.Navigate(feedback.IntentCart)
		return nil, ErrEmptyCart
	}
	return s, nil
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Processing reports whether an order submission is in flight.
func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Address returns the entered shipping address.
func (s *Session) Address() Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// Payment returns the entered payment details.
func (s *Session) Payment() Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payment
}

// Order returns the placed order once the session is complete.
func (s *Session) Order() (*order.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placed, s.placed != nil
}

// Quote prices the cart as it stands, including the applied promo.
func (s *Session) Quote() pricing.Quote {
	var applied *promo.Code
	if c, ok := s.promos.Applied(); ok {
		applied = &c
	}
	return s.policy.Quote(s.cart.Subtotal(), applied)
}

// SetAddress replaces the shipping address. A blank country keeps the
// current one.
func (s *Session) SetAddress(a Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}
	if a.Country == "" {
		a.Country = s.address.Country
	}
	s.address = a
	return nil
}

// SetPayment replaces the payment details.
func (s *Session) SetPayment(p Payment) error {
	if _, err := ParseMethod(string(p.Method)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}
	s.payment = p
	return nil
}

// Next advances to the following step when the current step validates.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing {
		return ErrInFlight
	}
	if s.cart.IsEmpty() {
		s.nav.Navigate(feedback.IntentCart)
		return ErrEmptyCart
	}

	switch s.step {
	case StepShipping:
		if missing := s.address.missing(); len(missing) > 0 {
			s.notify.Notify(feedback.Destructive("Please fill all required fields", ""))
			return &ValidationError{Step: StepShipping, Missing: missing}
		}
		s.step = StepPayment
	case StepPayment:
		if missing := s.payment.missing(); len(missing) > 0 {
			s.notify.Notify(feedback.Destructive("Please complete payment information", ""))
			return &ValidationError{Step: StepPayment, Missing: missing}
		}
		s.step = StepReview
	default:
		return ErrWrongStep
	}
	return nil
}

// Back returns to the previous step without clearing entered values. From
// the shipping step it asks the client to go back to the cart.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing {
		return ErrInFlight
	}

	switch s.step {
	case StepShipping:
		s.nav.Navigate(feedback.IntentCart)
	case StepPayment:
		s.step = StepShipping
	case StepReview:
		s.step = StepPayment
	default:
		return ErrWrongStep
	}
	return nil
}

// PlaceOrder submits the order from the review step. Only one submission may
// be in flight; a concurrent call fails with ErrInFlight. On a declined
// payment the session stays at review and returns a *PaymentFailedError.
func (s *Session) PlaceOrder(ctx context.Context) (*order.Order, error) {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return nil, ErrInFlight
	}
	if s.step != StepReview {
		s.mu.Unlock()
		return nil, ErrWrongStep
	}
	if s.cart.IsEmpty() {
		s.nav.Navigate(feedback.IntentCart)
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}

	quote := s.Quote()
	lines := s.cart.Lines()
	pending := &order.Order{
		Reference:     order.NewReference(s.prefix, s.now()),
		Items:         make([]order.OrderItem, len(lines)),
		Subtotal:      quote.Subtotal,
		Discount:      quote.Discount,
		Shipping:      quote.Shipping,
		Total:         quote.Total,
		Currency:      s.cart.Currency(),
		PaymentMethod: string(s.payment.Method),
		ShipTo:        s.address.Name,
	}
	for i, l := range lines {
		pending.Items[i] = order.OrderItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
		}
	}
	if quote.Promo != nil {
		pending.PromoCode = quote.Promo.Code
	}
	method := s.payment.Method
	s.processing = true
	s.mu.Unlock()

	err := s.gateway.Charge(ctx, Charge{
		Reference: pending.Reference,
		Amount:    pending.Total,
		Method:    method,
	})

	s.mu.Lock()
	s.processing = false

	if err != nil {
		s.mu.Unlock()
		s.notify.Notify(feedback.Destructive("Payment Failed", "Please try again or use a different payment method."))
		return nil, &PaymentFailedError{Reference: pending.Reference, Cause: err}
	}

	pending.CreatedAt = s.now()
	// Only what was charged leaves the cart.
	s.cart.Deduct(lines)
	s.promos.Remove()
	s.placed = pending
	s.step = StepComplete
	s.mu.Unlock()

	// Confirmers may call back into the owner of this session.
	s.confirmer.Confirm(ctx, pending)
	s.notify.Notify(feedback.Info("Order Placed Successfully!", "You will receive a confirmation email shortly."))
	s.nav.Navigate(feedback.IntentOrderConfirmation)
	return pending, nil
}

// editable reports whether entered details may change. Callers hold mu.
func (s *Session) editable() error {
	if s.processing {
		return ErrInFlight
	}
	if s.step == StepComplete {
		return ErrWrongStep
	}
	return nil
}

type nopConfirmer struct{}

func (nopConfirmer) Confirm(context.Context, *order.Order) {}
