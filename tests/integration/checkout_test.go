//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestCheckout_EmptyCart(t *testing.T) {
	s := &shopper{t: t}

	resp := s.do(http.MethodPost, "/api/checkout", nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusConflict)

	body := decodeJSON[errorResponse](t, resp)
	if body.Navigate != "cart" {
		t.Errorf("navigate: got %q, want cart", body.Navigate)
	}
}

func TestCheckout_PlaceOrder(t *testing.T) {
	s := &shopper{t: t}

	resp := s.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": "1", "quantity": 2})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	if s.session == "" {
		t.Fatal("X-Session-ID header not returned")
	}

	resp = s.do(http.MethodPost, "/api/cart/promo", map[string]string{"code": "save20"})
	expectStatus(t, resp, http.StatusOK)
	cart := decodeJSON[envelope[cartResponse]](t, resp)
	resp.Body.Close()
	if cart.Data.Quote.Total != 1438.4 {
		t.Fatalf("cart total: got %v, want 1438.4", cart.Data.Quote.Total)
	}

	resp = s.do(http.MethodPost, "/api/checkout", nil)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = s.do(http.MethodPost, "/api/checkout/next", nil)
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	invalid := decodeJSON[errorResponse](t, resp)
	resp.Body.Close()
	if len(invalid.Missing) != 7 {
		t.Fatalf("missing fields: got %v, want 7", invalid.Missing)
	}

	steps := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPut, "/api/checkout/shipping", map[string]string{
			"name": "Asha Rao", "email": "asha@example.com", "phone": "9876543210",
			"address": "12 Temple Road", "city": "Pune", "state": "Maharashtra", "postalCode": "411001",
		}},
		{http.MethodPost, "/api/checkout/next", nil},
		{http.MethodPut, "/api/checkout/payment", map[string]string{"method": "upi", "upiId": "asha@upi"}},
		{http.MethodPost, "/api/checkout/next", nil},
	}
	for _, step := range steps {
		resp := s.do(step.method, step.path, step.body)
		expectStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	resp = s.do(http.MethodGet, "/api/checkout", nil)
	co := decodeJSON[envelope[checkoutResponse]](t, resp)
	resp.Body.Close()
	if co.Data.Step != "review" {
		t.Fatalf("step: got %q, want review", co.Data.Step)
	}

	// The compose file disables simulated declines.
	resp = s.do(http.MethodPost, "/api/checkout/order", nil)
	expectStatus(t, resp, http.StatusOK)
	placed := decodeJSON[envelope[orderResponse]](t, resp)
	resp.Body.Close()

	if placed.Data.Total != 1438.4 || placed.Data.Discount != 359.6 || placed.Data.Shipping != 0 {
		t.Errorf("order amounts: got %+v", placed.Data)
	}
	if placed.Data.PromoCode != "SAVE20" {
		t.Errorf("promo: got %q, want SAVE20", placed.Data.PromoCode)
	}
	if len(placed.Data.Reference) != 9 || placed.Data.Reference[:3] != "COW" {
		t.Errorf("reference: got %q", placed.Data.Reference)
	}
	if placed.Navigate != "order-confirmation" {
		t.Errorf("navigate: got %q, want order-confirmation", placed.Navigate)
	}

	resp = s.do(http.MethodGet, "/api/cart", nil)
	after := decodeJSON[envelope[cartResponse]](t, resp)
	resp.Body.Close()
	if after.Data.ItemCount != 0 {
		t.Errorf("cart not cleared: %d items", after.Data.ItemCount)
	}

	resp = s.do(http.MethodGet, "/api/orders/last", nil)
	expectStatus(t, resp, http.StatusOK)
	last := decodeJSON[envelope[orderResponse]](t, resp)
	resp.Body.Close()
	if last.Data.Reference != placed.Data.Reference {
		t.Errorf("last order: got %q, want %q", last.Data.Reference, placed.Data.Reference)
	}
}

func TestCart_OutOfStock(t *testing.T) {
	s := &shopper{t: t}

	resp := s.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": "5"})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusConflict)
}
