//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	list := decodeJSON[productList](t, resp)
	if len(list.Products) != 6 {
		t.Fatalf("expected 6 products, got %d", len(list.Products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products/1")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	ghee := decodeJSON[productResponse](t, resp)
	if ghee.Name != "Organic A2 Ghee - 500ml" {
		t.Errorf("name: got %q, want %q", ghee.Name, "Organic A2 Ghee - 500ml")
	}
	if ghee.Price != 899 {
		t.Errorf("price: got %v, want 899", ghee.Price)
	}
	if ghee.Category != "Dairy" {
		t.Errorf("category: got %q, want %q", ghee.Category, "Dairy")
	}
	if len(ghee.Badges) != 2 {
		t.Errorf("badges: got %v, want 2 entries", ghee.Badges)
	}
	if !ghee.InStock {
		t.Error("inStock: got false, want true")
	}
}

func TestListProducts_FeaturedOrder(t *testing.T) {
	resp := doGet(t, "/api/products?sort=featured")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	list := decodeJSON[productList](t, resp)
	for i, p := range list.Products {
		if want := string(rune('1' + i)); p.ID != want {
			t.Fatalf("position %d: got id %q, want %q", i, p.ID, want)
		}
	}
}

func TestListProducts_Filter(t *testing.T) {
	resp := doGet(t, "/api/products?category=Wellness&sort=price-high")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	list := decodeJSON[productList](t, resp)
	if len(list.Products) != 2 || list.Products[0].ID != "6" || list.Products[1].ID != "3" {
		t.Fatalf("unexpected products: %+v", list.Products)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/999")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusNotFound)

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("code: got %d, want 404", body.Code)
	}
}
