package cart

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
)

func newTestProduct(id, name string, price int64) product.Product {
	return product.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Category: "test",
		InStock:  true,
	}
}

var (
	ghee    = newTestProduct("1", "Organic A2 Ghee - 500ml", 899)
	diyas   = newTestProduct("2", "Handmade Cow Dung Diyas (Set of 10)", 299)
	incense = newTestProduct("3", "Natural Incense Sticks - Sandalwood", 199)
)

func TestStore_AddItemSameProduct(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		s := NewStore()
		for range n {
			s.AddItem(ghee)
		}

		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, n, lines[0].Quantity)
		assert.Equal(t, n, s.ItemCount())
	}
}

func TestStore_AddItemKeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	s.AddItem(diyas)
	s.AddItem(ghee)
	s.AddItem(diyas)
	s.AddItem(incense)

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "2", lines[0].Product.ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "1", lines[1].Product.ID)
	assert.Equal(t, "3", lines[2].Product.ID)
}

func TestStore_UpdateQuantity(t *testing.T) {
	s := NewStore()
	s.AddItem(ghee)
	s.AddItem(diyas)

	s.UpdateQuantity("1", 5)
	l, ok := s.Line("1")
	require.True(t, ok)
	assert.Equal(t, 5, l.Quantity)

	s.UpdateQuantity("1", 2)
	l, _ = s.Line("1")
	assert.Equal(t, 2, l.Quantity, "update replaces rather than increments")

	s.UpdateQuantity("missing", 3)
	assert.Len(t, s.Lines(), 2)
}

func TestStore_UpdateQuantityBelowOneRemoves(t *testing.T) {
	for _, qty := range []int{0, -1, -100} {
		updated := NewStore()
		updated.AddItem(ghee)
		updated.AddItem(diyas)
		updated.UpdateQuantity("1", qty)

		removed := NewStore()
		removed.AddItem(ghee)
		removed.AddItem(diyas)
		removed.RemoveItem("1")

		assert.Equal(t, removed.Lines(), updated.Lines(), "quantity %d", qty)
		_, ok := updated.Line("1")
		assert.False(t, ok)
	}
}

func TestStore_RemoveItem(t *testing.T) {
	var buf feedback.Buffer
	s := NewStore(WithNotifier(&buf))
	s.AddItem(ghee)
	_, _ = buf.Drain()

	s.RemoveItem("missing")
	events, _ := buf.Drain()
	assert.Empty(t, events)

	s.RemoveItem("1")
	assert.True(t, s.IsEmpty())
	events, _ = buf.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, "Item Removed", events[0].Title)
}

func TestStore_ClearKeepsCurrency(t *testing.T) {
	s := NewStore()
	s.AddItem(ghee)
	require.NoError(t, s.SetCurrency(currency.EUR))

	s.Clear()

	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.ItemCount())
	assert.True(t, s.Subtotal().IsZero())
	assert.Equal(t, currency.EUR, s.Currency())
}

func TestStore_ItemCount(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0, s.ItemCount())
	assert.True(t, s.IsEmpty())

	s.AddItem(ghee)
	s.AddItem(ghee)
	s.AddItem(diyas)
	s.UpdateQuantity("2", 4)

	assert.Equal(t, 6, s.ItemCount())
	assert.False(t, s.IsEmpty())
}

func TestStore_SubtotalUnchangedByCurrency(t *testing.T) {
	s := NewStore()
	s.AddItem(ghee)
	s.AddItem(ghee)
	s.AddItem(incense)

	want := decimal.NewFromInt(899*2 + 199)
	for _, c := range currency.Codes() {
		require.NoError(t, s.SetCurrency(c))
		assert.True(t, want.Equal(s.Subtotal()), "currency %s", c)
	}
}

func TestStore_SetCurrencyRejectsUnknown(t *testing.T) {
	s := NewStore(WithCurrency(currency.USD))

	err := s.SetCurrency(currency.Code("JPY"))
	require.ErrorIs(t, err, currency.ErrUnsupported)
	assert.Equal(t, currency.USD, s.Currency())
}

func TestStore_DefaultCurrencyIsBase(t *testing.T) {
	assert.Equal(t, currency.INR, NewStore().Currency())
	assert.Equal(t, currency.INR, NewStore(WithCurrency("XXX")).Currency())
}

func TestStore_AddItemNotifies(t *testing.T) {
	var buf feedback.Buffer
	s := NewStore(WithNotifier(&buf))
	s.AddItem(incense)

	events, _ := buf.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, "Added to Cart", events[0].Title)
	assert.Equal(t, "Natural Incense Sticks - Sandalwood has been added to your cart.", events[0].Description)
}

func TestStore_AddItemsNotifiesOnce(t *testing.T) {
	var buf feedback.Buffer
	s := NewStore(WithNotifier(&buf))
	s.AddItem(ghee)
	s.AddItems(ghee, 3)
	s.AddItems(diyas, 0)

	l, ok := s.Line(ghee.ID)
	require.True(t, ok)
	assert.Equal(t, 4, l.Quantity)
	assert.Len(t, s.Lines(), 1)

	events, _ := buf.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, "Added to Cart", events[1].Title)
	assert.Equal(t, "3 x Organic A2 Ghee - 500ml added to your cart.", events[1].Description)
}

func TestStore_DeductKeepsLaterAdditions(t *testing.T) {
	var buf feedback.Buffer
	s := NewStore(WithNotifier(&buf))
	s.AddItems(ghee, 2)
	s.AddItem(diyas)
	ordered := s.Lines()

	s.AddItem(ghee)
	s.AddItem(incense)
	_, _ = buf.Drain()

	s.Deduct(ordered)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, ghee.ID, lines[0].Product.ID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, incense.ID, lines[1].Product.ID)
	assert.Equal(t, 1, lines[1].Quantity)

	events, _ := buf.Drain()
	assert.Empty(t, events)
}

func TestStore_DeductEverything(t *testing.T) {
	s := NewStore(WithCurrency(currency.EUR))
	s.AddItems(ghee, 2)
	s.Deduct(s.Lines())

	assert.True(t, s.IsEmpty())
	assert.Equal(t, currency.EUR, s.Currency())
}

func TestStore_LinesReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddItem(ghee)

	lines := s.Lines()
	lines[0].Quantity = 42

	l, _ := s.Line("1")
	assert.Equal(t, 1, l.Quantity)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(ghee)
		}()
	}
	wg.Wait()

	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 50, s.ItemCount())
}
