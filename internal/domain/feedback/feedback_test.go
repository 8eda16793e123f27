package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBuffer_Drain(t *testing.T) {
	var b Buffer
	b.Notify(Info("Added to Cart", "Ghee has been added to your cart."))
	b.Notify(Destructive("Payment Failed", "Please try again."))
	b.Navigate(IntentCart)
	b.Navigate(IntentOrderConfirmation)

	events, intent := b.Drain()
	assert.Len(t, events, 2)
	assert.Equal(t, SeverityDestructive, events[1].Severity)
	assert.Equal(t, IntentOrderConfirmation, intent)

	events, intent = b.Drain()
	assert.Empty(t, events)
	assert.Empty(t, intent)
}

func TestTee(t *testing.T) {
	var a, b Buffer
	tee := Tee{&a, &b, NewLogger(zap.NewNop()), Nop{}}

	tee.Notify(Info("t", "d"))
	tee.Navigate(IntentHome)

	for _, buf := range []*Buffer{&a, &b} {
		events, intent := buf.Drain()
		assert.Equal(t, []Event{{Title: "t", Description: "d", Severity: SeverityInfo}}, events)
		assert.Equal(t, IntentHome, intent)
	}
}
