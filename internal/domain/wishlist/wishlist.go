// Package wishlist keeps the set of products a shopper marked for later.
package wishlist

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
)

// List is an ordered set of product IDs. It is safe for concurrent use.
type List struct {
	notify feedback.Notifier

	mu  sync.Mutex
	ids []string
}

// New returns an empty wishlist reporting changes to n. A nil n discards them.
func New(n feedback.Notifier) *List {
	if n == nil {
		n = feedback.Nop{}
	}
	return &List{notify: n}
}

// Toggle adds p when absent and removes it when present. It reports whether
// p is on the list afterwards.
func (l *List) Toggle(p product.Product) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := slices.Index(l.ids, p.ID); i >= 0 {
		l.ids = slices.Delete(l.ids, i, i+1)
		l.notify.Notify(feedback.Info("Removed from Wishlist", fmt.Sprintf("%s has been removed from your wishlist.", p.Name)))
		return false
	}
	l.ids = append(l.ids, p.ID)
	l.notify.Notify(feedback.Info("Added to Wishlist", fmt.Sprintf("%s has been added to your wishlist.", p.Name)))
	return true
}

// Contains reports whether the product id is wishlisted.
func (l *List) Contains(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Contains(l.ids, id)
}

// IDs returns wishlisted product IDs in the order they were added.
func (l *List) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.ids)
}
