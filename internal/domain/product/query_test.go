package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []Product {
	return []Product{
		{ID: "1", Name: "Organic A2 Ghee - 500ml", Price: decimal.NewFromInt(899), Category: "Dairy", Description: "Pure A2 ghee, bilona method."},
		{ID: "2", Name: "Handmade Cow Dung Diyas (Set of 10)", Price: decimal.NewFromInt(299), Category: "Home Decor", Description: "Handcrafted diyas for festivals."},
		{ID: "3", Name: "Natural Incense Sticks - Sandalwood", Price: decimal.NewFromInt(199), Category: "Wellness", Description: "Sandalwood and herbs."},
		{ID: "4", Name: "Organic A2 Ghee - 1kg", Price: decimal.NewFromInt(1699), Category: "Dairy", Description: "Large pack of ghee."},
		{ID: "6", Name: "Lavender Incense Sticks", Price: decimal.NewFromInt(249), Category: "Wellness", Description: "Calming lavender."},
	}
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func ptr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name: "empty query keeps catalog order",
			want: []string{"1", "2", "3", "4", "6"},
		},
		{
			name:  "search matches name case-insensitively",
			query: Query{Search: "GHEE"},
			want:  []string{"1", "4"},
		},
		{
			name:  "search matches description",
			query: Query{Search: "festivals"},
			want:  []string{"2"},
		},
		{
			name:  "category filter",
			query: Query{Categories: []string{"Wellness", "Home Decor"}},
			want:  []string{"2", "3", "6"},
		},
		{
			name:  "price range is inclusive",
			query: Query{MinPrice: ptr(249), MaxPrice: ptr(899)},
			want:  []string{"1", "2", "6"},
		},
		{
			name:  "sort by price ascending",
			query: Query{Sort: SortPriceLow},
			want:  []string{"3", "6", "2", "1", "4"},
		},
		{
			name:  "sort by price descending",
			query: Query{Sort: SortPriceHigh},
			want:  []string{"4", "1", "2", "6", "3"},
		},
		{
			name:  "sort by name",
			query: Query{Sort: SortName, Categories: []string{"Wellness"}},
			want:  []string{"6", "3"},
		},
		{
			name:  "no match",
			query: Query{Search: "tea"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(testCatalog(), tt.query)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	catalog := testCatalog()
	_ = Filter(catalog, Query{Sort: SortPriceHigh})
	assert.Equal(t, []string{"1", "2", "3", "4", "6"}, ids(catalog))
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortFeatured, s)

	s, err = ParseSort("price-high")
	require.NoError(t, err)
	assert.Equal(t, SortPriceHigh, s)

	_, err = ParseSort("random")
	require.Error(t, err)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Dairy", "Home Decor", "Wellness"}, Categories(testCatalog()))
}
