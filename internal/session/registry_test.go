package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/checkout"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/order"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/pricing"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
)

type acceptAll struct{}

func (acceptAll) Charge(context.Context, checkout.Charge) error { return nil }

type blockingGateway struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGateway) Charge(context.Context, checkout.Charge) error {
	close(g.started)
	<-g.release
	return nil
}

type recordingConfirmer struct {
	mu     sync.Mutex
	orders []*order.Order
}

func (c *recordingConfirmer) Confirm(_ context.Context, o *order.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = append(c.orders, o)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var incense = product.Product{ID: "3", Name: "Natural Incense Sticks - Sandalwood", Price: decimal.NewFromInt(199), InStock: true}

func testConfig() Config {
	return Config{
		TTL:      time.Minute,
		Checkout: checkout.Config{Pricing: pricing.DefaultPolicy()},
	}
}

func TestResolve(t *testing.T) {
	r := NewRegistry(testConfig(), acceptAll{})

	s, created := r.Resolve("")
	require.True(t, created)
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	again, created := r.Resolve(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		other, created := r.Resolve(id)
		assert.True(t, created, id)
		assert.NotEqual(t, id, other.ID)
	}
	assert.Equal(t, 3, r.Len())
}

func TestResolve_DefaultCurrency(t *testing.T) {
	cfg := testConfig()
	cfg.Currency = currency.USD
	r := NewRegistry(cfg, acceptAll{})

	s, _ := r.Resolve("")
	assert.Equal(t, currency.USD, s.Cart.Currency())
}

func TestSessionsAreIsolated(t *testing.T) {
	r := NewRegistry(testConfig(), acceptAll{})
	a, _ := r.Resolve("")
	b, _ := r.Resolve("")

	a.Cart.AddItem(incense)

	assert.Equal(t, 1, a.Cart.ItemCount())
	assert.True(t, b.Cart.IsEmpty())
	events, _ := b.Feedback.Drain()
	assert.Empty(t, events)
	events, _ = a.Feedback.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, "Added to Cart", events[0].Title)
}

func TestSweep(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	r := NewRegistry(testConfig(), acceptAll{}, WithClock(c.Now))

	stale, _ := r.Resolve("")
	fresh, _ := r.Resolve("")

	c.Advance(45 * time.Second)
	_, ok := r.Get(fresh.ID)
	require.True(t, ok)

	c.Advance(30 * time.Second)
	assert.Equal(t, 1, r.Sweep())

	_, ok = r.Get(stale.ID)
	assert.False(t, ok)
	_, ok = r.Get(fresh.ID)
	assert.True(t, ok)
}

func TestSweep_KeepsSessionsSubmittingAnOrder(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	gw := &blockingGateway{started: make(chan struct{}), release: make(chan struct{})}
	r := NewRegistry(testConfig(), gw, WithClock(c.Now))

	s, _ := r.Resolve("")
	s.Cart.AddItem(incense)
	cs, err := s.BeginCheckout()
	require.NoError(t, err)
	require.NoError(t, cs.SetAddress(checkout.Address{
		Name: "A", Email: "a@b.c", Phone: "1", Street: "S", City: "C", State: "S", PostalCode: "1",
	}))
	require.NoError(t, cs.Next())
	require.NoError(t, cs.SetPayment(checkout.Payment{Method: checkout.MethodCOD}))
	require.NoError(t, cs.Next())

	done := make(chan error, 1)
	go func() {
		_, err := cs.PlaceOrder(context.Background())
		done <- err
	}()
	<-gw.started

	assert.True(t, s.Busy())
	c.Advance(time.Hour)
	assert.Zero(t, r.Sweep())

	_, err = s.BeginCheckout()
	require.ErrorIs(t, err, checkout.ErrInFlight)

	close(gw.release)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Equal(t, 1, r.Sweep())
}

func TestBeginCheckout(t *testing.T) {
	confirmer := &recordingConfirmer{}
	sink := &feedback.Buffer{}
	r := NewRegistry(testConfig(), acceptAll{}, WithConfirmer(confirmer), WithSink(sink))
	s, _ := r.Resolve("")

	_, err := s.BeginCheckout()
	require.ErrorIs(t, err, checkout.ErrEmptyCart)
	_, ok := s.Checkout()
	assert.False(t, ok)
	_, intent := s.Feedback.Drain()
	assert.Equal(t, feedback.IntentCart, intent)

	s.Cart.AddItem(incense)
	first, err := s.BeginCheckout()
	require.NoError(t, err)
	require.NoError(t, first.Back())

	second, err := s.BeginCheckout()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	current, ok := s.Checkout()
	require.True(t, ok)
	assert.Same(t, second, current)

	require.NoError(t, second.SetAddress(checkout.Address{
		Name: "A", Email: "a@b.c", Phone: "1", Street: "S", City: "C", State: "S", PostalCode: "1",
	}))
	require.NoError(t, second.Next())
	require.NoError(t, second.SetPayment(checkout.Payment{Method: checkout.MethodCOD}))
	require.NoError(t, second.Next())
	placed, err := second.PlaceOrder(context.Background())
	require.NoError(t, err)

	last, ok := s.LastOrder()
	require.True(t, ok)
	assert.Same(t, placed, last)
	require.Len(t, confirmer.orders, 1)
	assert.Same(t, placed, confirmer.orders[0])

	events, _ := sink.Drain()
	titles := make([]string, len(events))
	for i, e := range events {
		titles[i] = e.Title
	}
	assert.Contains(t, titles, "Added to Cart")
	assert.Contains(t, titles, "Order Placed Successfully!")
}

func TestQuote_MatchesCheckout(t *testing.T) {
	// A zero config still prices with the default shipping policy.
	r := NewRegistry(Config{}, acceptAll{})
	s, _ := r.Resolve("")
	s.Cart.AddItem(incense)
	s.Cart.AddItem(incense)

	q := s.Quote()
	assert.True(t, decimal.NewFromInt(398).Equal(q.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(q.Shipping))
	assert.True(t, decimal.NewFromInt(448).Equal(q.Total))

	_, err := s.Promos.Apply("SAVE20")
	require.NoError(t, err)
	cs, err := s.BeginCheckout()
	require.NoError(t, err)

	want := cs.Quote()
	got := s.Quote()
	assert.True(t, want.Total.Equal(got.Total), "cart %s, checkout %s", got.Total, want.Total)
	assert.True(t, decimal.RequireFromString("368.4").Equal(got.Total))
	assert.False(t, s.Busy())
}

func TestRun_StopsWithContext(t *testing.T) {
	r := NewRegistry(testConfig(), acceptAll{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
