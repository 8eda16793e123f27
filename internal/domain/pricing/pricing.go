package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/promo"
)

var hundred = decimal.NewFromInt(100)

// Policy holds the shipping rules applied to every quote.
type Policy struct {
	// FreeShippingOver is the subtotal strictly above which shipping is free.
	FreeShippingOver decimal.Decimal
	// FlatShipping is charged when the subtotal does not exceed FreeShippingOver.
	FlatShipping decimal.Decimal
}

// DefaultPolicy returns free shipping above ₹500 and a ₹50 flat rate otherwise.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingOver: decimal.NewFromInt(500),
		FlatShipping:     decimal.NewFromInt(50),
	}
}

// Validate rejects negative amounts.
func (p Policy) Validate() error {
	if p.FreeShippingOver.IsNegative() {
		return errors.New("free shipping threshold must not be negative")
	}
	if p.FlatShipping.IsNegative() {
		return errors.New("flat shipping must not be negative")
	}
	return nil
}

// Quote is the derived price breakdown of a cart, in base currency.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	// Promo is the applied promo code, nil when none.
	Promo *promo.Code
	// FreeShippingGap is how much more the subtotal needs to qualify for
	// free shipping. Zero when shipping is already free.
	FreeShippingGap decimal.Decimal
}

// Quote computes the breakdown for subtotal with an optional promo code.
// The discount is always taken from the undiscounted subtotal and the
// shipping threshold is evaluated on the subtotal too.
func (p Policy) Quote(subtotal decimal.Decimal, applied *promo.Code) Quote {
	q := Quote{
		Subtotal:        subtotal,
		Discount:        decimal.Zero,
		Shipping:        decimal.Zero,
		FreeShippingGap: decimal.Zero,
	}

	if applied != nil {
		c := *applied
		q.Promo = &c
		q.Discount = subtotal.Mul(c.Percent).Div(hundred)
	}

	if !subtotal.GreaterThan(p.FreeShippingOver) {
		q.Shipping = p.FlatShipping
		q.FreeShippingGap = p.FreeShippingOver.Sub(subtotal)
	}

	q.Total = subtotal.Sub(q.Discount).Add(q.Shipping)
	return q
}
