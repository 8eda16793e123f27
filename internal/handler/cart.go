package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/checkout"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/session"
)

// maxAddQuantity caps the units added by a single request.
const maxAddQuantity = 99

// mutable refuses cart and promo changes while an order is being paid for.
func mutable(s *session.Session) error {
	if s.Busy() {
		return checkout.ErrInFlight
	}
	return nil
}

// cartView snapshots the cart so the encoder does not observe later changes.
func (h *Handler) cartView(s *session.Session) body {
	lines := s.Cart.Lines()
	display := s.Cart.Currency()
	count := s.Cart.ItemCount()
	q := s.Quote()

	return func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			strField(e, "currency", string(display))
			e.Field("items", func(e *jx.Encoder) {
				e.ArrStart()
				for _, l := range lines {
					e.Obj(func(e *jx.Encoder) {
						e.Field("product", func(e *jx.Encoder) { h.encodeProduct(e, l.Product, display) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
						moneyField(e, "lineTotal", l.Total())
						strField(e, "formattedLineTotal", h.formatter.Format(l.Total(), display))
					})
				}
				e.ArrEnd()
			})
			e.Field("itemCount", func(e *jx.Encoder) { e.Int(count) })
			e.Field("quote", func(e *jx.Encoder) { h.encodeQuote(e, q, display) })
		})
	}
}

func (h *Handler) getCart(_ *http.Request, s *session.Session) (body, error) {
	return h.cartView(s), nil
}

func (h *Handler) addCartItem(r *http.Request, s *session.Session) (body, error) {
	var (
		productID string
		quantity  = 1
	)
	if err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			v, err := d.Str()
			productID = v
			return err
		case "quantity":
			v, err := d.Int()
			quantity = v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, badRequest("productId is required", nil)
	}
	if quantity < 1 || quantity > maxAddQuantity {
		return nil, badRequest("quantity must be between 1 and 99", nil)
	}

	p, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	if !p.InStock {
		return nil, errors.Wrap(errOutOfStock, p.ID)
	}
	if err := mutable(s); err != nil {
		return nil, err
	}
	s.Cart.AddItems(*p, quantity)
	return h.cartView(s), nil
}

func (h *Handler) updateCartItem(r *http.Request, s *session.Session) (body, error) {
	id := r.PathValue("id")
	var (
		quantity int
		seen     bool
	)
	if err := decodeBody(r, func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		v, err := d.Int()
		quantity, seen = v, true
		return err
	}); err != nil {
		return nil, err
	}
	if !seen {
		return nil, badRequest("quantity is required", nil)
	}
	if _, ok := s.Cart.Line(id); !ok {
		return nil, errors.Wrap(errNotInCart, id)
	}
	if err := mutable(s); err != nil {
		return nil, err
	}

	s.Cart.UpdateQuantity(id, quantity)
	return h.cartView(s), nil
}

func (h *Handler) removeCartItem(r *http.Request, s *session.Session) (body, error) {
	id := r.PathValue("id")
	if _, ok := s.Cart.Line(id); !ok {
		return nil, errors.Wrap(errNotInCart, id)
	}
	if err := mutable(s); err != nil {
		return nil, err
	}
	s.Cart.RemoveItem(id)
	return h.cartView(s), nil
}

func (h *Handler) clearCart(_ *http.Request, s *session.Session) (body, error) {
	if err := mutable(s); err != nil {
		return nil, err
	}
	s.Cart.Clear()
	return h.cartView(s), nil
}

func (h *Handler) setCurrency(r *http.Request, s *session.Session) (body, error) {
	var code string
	if err := decodeStrings(r, map[string]*string{"currency": &code}); err != nil {
		return nil, err
	}
	c, err := currency.Parse(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if err := s.Cart.SetCurrency(c); err != nil {
		return nil, err
	}
	return h.cartView(s), nil
}

func (h *Handler) applyPromo(r *http.Request, s *session.Session) (body, error) {
	var code string
	if err := decodeStrings(r, map[string]*string{"code": &code}); err != nil {
		return nil, err
	}
	if err := mutable(s); err != nil {
		return nil, err
	}
	if _, err := s.Promos.Apply(code); err != nil {
		return nil, err
	}
	return h.cartView(s), nil
}

func (h *Handler) removePromo(_ *http.Request, s *session.Session) (body, error) {
	if err := mutable(s); err != nil {
		return nil, err
	}
	s.Promos.Remove()
	return h.cartView(s), nil
}

func (h *Handler) getWishlist(r *http.Request, s *session.Session) (body, error) {
	return h.wishlistView(r, s, nil)
}

func (h *Handler) toggleWishlist(r *http.Request, s *session.Session) (body, error) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	added := s.Wishlist.Toggle(*p)
	return h.wishlistView(r, s, &added)
}

func (h *Handler) wishlistView(r *http.Request, s *session.Session, added *bool) (body, error) {
	items, err := h.products.GetByIDs(r.Context(), s.Wishlist.IDs())
	if err != nil {
		return nil, errors.Wrap(err, "get wishlist products")
	}
	display := s.Cart.Currency()

	return func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			if added != nil {
				e.Field("added", func(e *jx.Encoder) { e.Bool(*added) })
			}
			e.Field("items", func(e *jx.Encoder) { h.encodeProducts(e, items, display) })
		})
	}, nil
}
