// Package payment provides checkout.Gateway implementations.
package payment

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/checkout"
)

// ErrDeclined is returned when the simulated processor rejects a charge.
var ErrDeclined = errors.New("payment declined")

// SimulatedConfig parameterizes the simulated processor.
type SimulatedConfig struct {
	// Delay is how long every charge takes.
	Delay time.Duration
	// FailureRate is the probability in [0, 1] that a charge is declined.
	FailureRate float64
	// Seed makes the outcome sequence reproducible. Zero seeds from the clock.
	Seed uint64
}

// DefaultSimulatedConfig mirrors the demo processor: two seconds, one in ten
// charges declined.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		Delay:       2 * time.Second,
		FailureRate: 0.1,
	}
}

// Validate checks the configuration.
func (c SimulatedConfig) Validate() error {
	if c.Delay < 0 {
		return errors.Errorf("negative delay %s", c.Delay)
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return errors.Errorf("failure rate %v out of [0, 1]", c.FailureRate)
	}
	return nil
}

// Simulated is a payment processor that waits and then flips a biased coin.
type Simulated struct {
	delay       time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

var _ checkout.Gateway = (*Simulated)(nil)

// NewSimulated creates a simulated processor.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Simulated{
		delay:       cfg.Delay,
		failureRate: cfg.FailureRate,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Charge waits for the configured delay and then accepts or declines c.
// Cancellation of ctx aborts the wait and is returned as the error.
func (s *Simulated) Charge(ctx context.Context, c checkout.Charge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	if roll < s.failureRate {
		return errors.Wrapf(ErrDeclined, "charge %s", c.Reference)
	}
	return nil
}
