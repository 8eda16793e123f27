package product

import (
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sort selects the ordering of a filtered product listing.
type Sort string

const (
	// SortFeatured keeps catalog order.
	SortFeatured Sort = "featured"
	// SortPriceLow orders by ascending price.
	SortPriceLow Sort = "price-low"
	// SortPriceHigh orders by descending price.
	SortPriceHigh Sort = "price-high"
	// SortName orders alphabetically by name.
	SortName Sort = "name"
)

// ParseSort maps a query value to a Sort. An empty value means SortFeatured.
func ParseSort(s string) (Sort, error) {
	switch v := Sort(s); v {
	case "", SortFeatured:
		return SortFeatured, nil
	case SortPriceLow, SortPriceHigh, SortName:
		return v, nil
	default:
		return "", errors.Errorf("unknown sort %q", s)
	}
}

// Query describes a product browsing request. Zero values disable the
// corresponding filter.
type Query struct {
	Search     string
	Categories []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       Sort
}

// Filter returns the products matching q in the order requested by q.Sort.
// The input slice is not modified.
func Filter(products []Product, q Query) []Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if len(q.Categories) > 0 && !slices.Contains(q.Categories, p.Category) {
			continue
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b Product) int { return b.Price.Cmp(a.Price) })
	case SortName:
		slices.SortStableFunc(out, func(a, b Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	}
	return out
}

// Categories returns the distinct categories of products in first-seen order.
func Categories(products []Product) []string {
	var out []string
	for _, p := range products {
		if !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	return out
}
