package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
)

// Order is the receipt of a paid checkout handed to the confirmation page.
type Order struct {
	Reference     string
	Items         []OrderItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	PromoCode     string
	Currency      currency.Code
	PaymentMethod string
	ShipTo        string
	CreatedAt     time.Time
}

// OrderItem represents a single line item in an order.
type OrderItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Confirmer receives orders once payment succeeded.
type Confirmer interface {
	Confirm(ctx context.Context, o *Order)
}

// DefaultReferencePrefix starts every order reference.
const DefaultReferencePrefix = "COW"

// NewReference builds a human-readable order reference from a fixed prefix
// and the last six digits of the millisecond clock. References are not
// guaranteed unique.
func NewReference(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%06d", prefix, now.UnixMilli()%1_000_000)
}
