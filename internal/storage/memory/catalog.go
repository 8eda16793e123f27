// Package memory provides in-process implementations of domain repositories.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"

	"github.com/Raghupremshahapuram/vedic-cart-creations/db"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
)

var _ product.Repository = (*Catalog)(nil)

// Catalog is a read-mostly product catalog held in memory. List returns
// products in insertion order, which is the "featured" order.
type Catalog struct {
	mu       sync.RWMutex
	products []product.Product
	byID     map[string]int
}

// NewCatalog returns a catalog holding products. Duplicate IDs are rejected.
func NewCatalog(products []product.Product) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Replace(products); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultCatalog returns the catalog built from the embedded seed file.
func DefaultCatalog() (*Catalog, error) {
	products, err := ParseProducts(db.Products)
	if err != nil {
		return nil, errors.Wrap(err, "parse embedded catalog")
	}
	return NewCatalog(products)
}

// Replace swaps the catalog contents atomically.
func (c *Catalog) Replace(products []product.Product) error {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		if p.ID == "" {
			return errors.Errorf("product at index %d has no id", i)
		}
		if _, dup := byID[p.ID]; dup {
			return errors.Errorf("duplicate product id %q", p.ID)
		}
		byID[p.ID] = i
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = slices.Clone(products)
	c.byID = byID
	return nil
}

// List returns all products in catalog order.
func (c *Catalog) List(_ context.Context) ([]product.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products), nil
}

// GetByID returns the product with the given id or product.ErrNotFound.
func (c *Catalog) GetByID(_ context.Context, id string) (*product.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	p := c.products[i]
	return &p, nil
}

// GetByIDs returns the products matching ids, skipping unknown ones.
func (c *Catalog) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if i, ok := c.byID[id]; ok {
			out = append(out, c.products[i])
		}
	}
	return out, nil
}
