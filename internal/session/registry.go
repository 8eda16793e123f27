package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/cart"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/checkout"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/order"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/pricing"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/promo"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/wishlist"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Config controls how sessions are created and expired.
type Config struct {
	TTL      time.Duration
	Currency currency.Code
	Promos   promo.Table
	Checkout checkout.Config
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfirmer forwards every placed order to c.
func WithConfirmer(c order.Confirmer) Option {
	return func(r *Registry) { r.confirmer = c }
}

// WithSink mirrors every session's feedback to sink, e.g. a feedback.Logger.
func WithSink(sink feedback.Sink) Option {
	return func(r *Registry) { r.sink = sink }
}

// WithClock overrides the clock used for expiry and order references.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry owns all live sessions. It is safe for concurrent use.
type Registry struct {
	cfg       Config
	gateway   checkout.Gateway
	confirmer order.Confirmer
	sink      feedback.Sink
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry whose checkouts charge gw.
func NewRegistry(cfg Config, gw checkout.Gateway, opts ...Option) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Promos == nil {
		cfg.Promos = promo.DefaultTable()
	}
	if p := cfg.Checkout.Pricing; p.FreeShippingOver.IsZero() && p.FlatShipping.IsZero() {
		cfg.Checkout.Pricing = pricing.DefaultPolicy()
	}
	r := &Registry{
		cfg:       cfg,
		gateway:   gw,
		confirmer: nopConfirmer{},
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the session for id, creating a new one when id is empty,
// malformed, unknown or expired. created reports whether a new session was
// made, in which case the caller must hand the new ID back to the client.
func (r *Registry) Resolve(id string) (s *Session, created bool) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if s, ok := r.sessions[id]; ok {
			s.touch(now)
			return s, false
		}
	}

	s = r.newSession(now)
	r.sessions[s.ID] = s
	return s, true
}

// Get returns a live session without creating one.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed. Sessions submitting an order are never dropped.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.TTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int
	for id, s := range r.sessions {
		lastSeen, busy := s.idleSince()
		if busy || !lastSeen.Before(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	lg := zctx.From(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				lg.Debug("Expired sessions removed", zap.Int("count", n), zap.Int("live", r.Len()))
			}
		}
	}
}

func (r *Registry) newSession(now time.Time) *Session {
	buf := &feedback.Buffer{}
	var sink feedback.Sink = buf
	if r.sink != nil {
		sink = feedback.Tee{buf, r.sink}
	}

	return &Session{
		ID:       uuid.NewString(),
		Cart:     cart.NewStore(cart.WithNotifier(sink), cart.WithCurrency(r.cfg.Currency)),
		Promos:   promo.NewSelection(r.cfg.Promos, sink),
		Wishlist: wishlist.New(sink),
		Feedback: buf,
		registry: r,
		sink:     sink,
		lastSeen: now,
	}
}

type nopConfirmer struct{}

func (nopConfirmer) Confirm(context.Context, *order.Order) {}
