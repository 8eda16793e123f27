package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/checkout"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/session"
)

func (h *Handler) currentCheckout(s *session.Session) (*checkout.Session, error) {
	cs, ok := s.Checkout()
	if !ok {
		return nil, errNoCheckout
	}
	return cs, nil
}

// checkoutView renders the wizard state. Card numbers are masked and the CVV
// is never echoed.
func (h *Handler) checkoutView(s *session.Session, cs *checkout.Session) body {
	step := cs.Step()
	processing := cs.Processing()
	addr := cs.Address()
	pay := cs.Payment()
	q := s.Quote()
	placed, done := cs.Order()
	display := s.Cart.Currency()

	return func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			strField(e, "step", step.String())
			e.Field("processing", func(e *jx.Encoder) { e.Bool(processing) })
			e.Field("shipping", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					strField(e, "name", addr.Name)
					strField(e, "email", addr.Email)
					strField(e, "phone", addr.Phone)
					strField(e, "address", addr.Street)
					strField(e, "city", addr.City)
					strField(e, "state", addr.State)
					strField(e, "postalCode", addr.PostalCode)
					strField(e, "country", addr.Country)
				})
			})
			e.Field("payment", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					strField(e, "method", string(pay.Method))
					strField(e, "label", pay.Method.Label())
					strField(e, "cardNumber", maskCard(pay.Card.Number))
					strField(e, "expiry", pay.Card.Expiry)
					strField(e, "cardHolder", pay.Card.Holder)
					strField(e, "upiId", pay.UPIID)
				})
			})
			e.Field("quote", func(e *jx.Encoder) { h.encodeQuote(e, q, display) })
			if done {
				e.Field("order", func(e *jx.Encoder) { h.encodeOrder(e, placed) })
			}
		})
	}
}

// maskCard keeps the last four digits of a card number.
func maskCard(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

func (h *Handler) beginCheckout(_ *http.Request, s *session.Session) (body, error) {
	cs, err := s.BeginCheckout()
	if err != nil {
		return nil, err
	}
	return h.checkoutView(s, cs), nil
}

func (h *Handler) getCheckout(_ *http.Request, s *session.Session) (body, error) {
	cs, err := h.currentCheckout(s)
	if err != nil {
		return nil, err
	}
	return h.checkoutView(s, cs), nil
}

func (h *Handler) setShipping(r *http.Request, s *session.Session) (body, error) {
	cs, err := h.currentCheckout(s)
	if err != nil {
		return nil, err
	}
	var a checkout.Address
	if err := decodeStrings(r, map[string]*string{
		"name":       &a.Name,
		"email":      &a.Email,
		"phone":      &a.Phone,
		"address":    &a.Street,
		"city":       &a.City,
		"state":      &a.State,
		"postalCode": &a.PostalCode,
		"country":    &a.Country,
	}); err != nil {
		return nil, err
	}
	if err := cs.SetAddress(a); err != nil {
		return nil, err
	}
	return h.checkoutView(s, cs), nil
}

func (h *Handler) setPayment(r *http.Request, s *session.Session) (body, error) {
	cs, err := h.currentCheckout(s)
	if err != nil {
		return nil, err
	}
	var (
		method string
		p      checkout.Payment
	)
	if err := decodeStrings(r, map[string]*string{
		"method":     &method,
		"cardNumber": &p.Card.Number,
		"expiry":     &p.Card.Expiry,
		"cvv":        &p.Card.CVV,
		"cardHolder": &p.Card.Holder,
		"upiId":      &p.UPIID,
	}); err != nil {
		return nil, err
	}
	p.Method = checkout.Method(strings.TrimSpace(method))
	p.Card.Number = strings.TrimSpace(p.Card.Number)
	p.Card.Expiry = strings.TrimSpace(p.Card.Expiry)
	p.Card.CVV = strings.TrimSpace(p.Card.CVV)
	p.Card.Holder = strings.TrimSpace(p.Card.Holder)
	p.UPIID = strings.TrimSpace(p.UPIID)

	if err := cs.SetPayment(p); err != nil {
		return nil, err
	}
	return h.checkoutView(s, cs), nil
}

func (h *Handler) nextStep(_ *http.Request, s *session.Session) (body, error) {
	cs, err := h.currentCheckout(s)
	if err != nil {
		return nil, err
	}
	if err := cs.Next(); err != nil {
		return nil, err
	}
	return h.checkoutView(s, cs), nil
}

func (h *Handler) previousStep(_ *http.Request, s *session.Session) (body, error) {
	cs, err := h.currentCheckout(s)
	if err != nil {
		return nil, err
	}
	if err := cs.Back(); err != nil {
		return nil, err
	}
	return h.checkoutView(s, cs), nil
}

func (h *Handler) placeOrder(r *http.Request, s *session.Session) (body, error) {
	cs, err := h.currentCheckout(s)
	if err != nil {
		return nil, err
	}
	o, err := cs.PlaceOrder(r.Context())
	if err != nil {
		return nil, err
	}
	return func(e *jx.Encoder) { h.encodeOrder(e, o) }, nil
}

func (h *Handler) lastOrder(_ *http.Request, s *session.Session) (body, error) {
	o, ok := s.LastOrder()
	if !ok {
		return nil, errNoOrder
	}
	return func(e *jx.Encoder) { h.encodeOrder(e, o) }, nil
}
