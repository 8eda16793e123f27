// Package handler exposes the storefront over HTTP.
//
// Catalog routes are stateless. Cart, wishlist and checkout routes act on the
// shopper session named by the X-Session-ID header; a new session is created
// when the header is missing or unknown and its ID is returned in the same
// header. Session responses are wrapped in an envelope carrying the
// notifications and navigation intent produced while serving the request.
package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/session"
)

// SessionHeader carries the shopper session ID in both directions.
const SessionHeader = "X-Session-ID"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to product image paths.
	ImageBaseURL string
	Currencies   currency.Table
}

// Handler serves the storefront API.
type Handler struct {
	products     product.Repository
	sessions     *session.Registry
	currencies   currency.Table
	formatter    *currency.Formatter
	imageBaseURL string
}

// New constructs a Handler.
func New(cfg Config, products product.Repository, sessions *session.Registry) *Handler {
	if cfg.Currencies == nil {
		cfg.Currencies = currency.DefaultTable()
	}
	return &Handler{
		products:     products,
		sessions:     sessions,
		currencies:   cfg.Currencies,
		formatter:    currency.NewFormatter(cfg.Currencies),
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Register mounts all API routes on mux under /api.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.plain(h.listProducts))
	mux.HandleFunc("GET /api/products/{id}", h.plain(h.getProduct))
	mux.HandleFunc("GET /api/categories", h.plain(h.listCategories))
	mux.HandleFunc("GET /api/currencies", h.plain(h.listCurrencies))

	mux.HandleFunc("GET /api/cart", h.withSession(h.getCart))
	mux.HandleFunc("POST /api/cart/items", h.withSession(h.addCartItem))
	mux.HandleFunc("PUT /api/cart/items/{id}", h.withSession(h.updateCartItem))
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.withSession(h.removeCartItem))
	mux.HandleFunc("DELETE /api/cart", h.withSession(h.clearCart))
	mux.HandleFunc("PUT /api/cart/currency", h.withSession(h.setCurrency))
	mux.HandleFunc("POST /api/cart/promo", h.withSession(h.applyPromo))
	mux.HandleFunc("DELETE /api/cart/promo", h.withSession(h.removePromo))

	mux.HandleFunc("GET /api/wishlist", h.withSession(h.getWishlist))
	mux.HandleFunc("POST /api/wishlist/{id}", h.withSession(h.toggleWishlist))

	mux.HandleFunc("POST /api/checkout", h.withSession(h.beginCheckout))
	mux.HandleFunc("GET /api/checkout", h.withSession(h.getCheckout))
	mux.HandleFunc("PUT /api/checkout/shipping", h.withSession(h.setShipping))
	mux.HandleFunc("PUT /api/checkout/payment", h.withSession(h.setPayment))
	mux.HandleFunc("POST /api/checkout/next", h.withSession(h.nextStep))
	mux.HandleFunc("POST /api/checkout/back", h.withSession(h.previousStep))
	mux.HandleFunc("POST /api/checkout/order", h.withSession(h.placeOrder))

	mux.HandleFunc("GET /api/orders/last", h.withSession(h.lastOrder))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found", nil)
	})
}

// body encodes a successful response payload.
type body func(e *jx.Encoder)

type plainFunc func(r *http.Request) (body, error)

type sessionFunc func(r *http.Request, s *session.Session) (body, error)

func (h *Handler) plain(fn plainFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fn(r)
		if err != nil {
			h.fail(r.Context(), w, err, nil)
			return
		}

		e := jx.GetEncoder()
		defer jx.PutEncoder(e)
		b(e)
		writeJSON(w, http.StatusOK, e.Bytes())
	}
}

func (h *Handler) withSession(fn sessionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, created := h.sessions.Resolve(r.Header.Get(SessionHeader))
		w.Header().Set(SessionHeader, s.ID)
		ctx := zctx.With(r.Context(), zap.String("session_id", s.ID))
		if created {
			zctx.From(ctx).Debug("Session created")
		}
		r = r.WithContext(ctx)

		b, err := fn(r, s)
		events, intent := s.Feedback.Drain()
		fb := &envelope{events: events, intent: intent}
		if err != nil {
			h.fail(ctx, w, err, fb)
			return
		}

		e := jx.GetEncoder()
		defer jx.PutEncoder(e)
		e.ObjStart()
		e.FieldStart("data")
		if b == nil {
			e.Null()
		} else {
			b(e)
		}
		fb.encode(e)
		e.ObjEnd()
		writeJSON(w, http.StatusOK, e.Bytes())
	}
}

// envelope is the feedback attached to session responses.
type envelope struct {
	events []feedback.Event
	intent feedback.Intent
}

func (fb *envelope) encode(e *jx.Encoder) {
	if fb == nil {
		return
	}
	e.FieldStart("notifications")
	e.ArrStart()
	for _, ev := range fb.events {
		e.Obj(func(e *jx.Encoder) {
			e.Field("title", func(e *jx.Encoder) { e.Str(ev.Title) })
			if ev.Description != "" {
				e.Field("description", func(e *jx.Encoder) { e.Str(ev.Description) })
			}
			e.Field("severity", func(e *jx.Encoder) { e.Str(string(ev.Severity)) })
		})
	}
	e.ArrEnd()
	if fb.intent != "" {
		e.Field("navigate", func(e *jx.Encoder) { e.Str(string(fb.intent)) })
	}
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error, fb *envelope) {
	status, message, extra := classify(err)
	if status >= http.StatusInternalServerError {
		zctx.From(ctx).Error("Request failed", zap.Error(err))
		message = "internal server error"
	}
	writeError(w, status, message, func(e *jx.Encoder) {
		if extra != nil {
			extra(e)
		}
		fb.encode(e)
	})
}

func writeError(w http.ResponseWriter, status int, message string, extra func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.Field("code", func(e *jx.Encoder) { e.Int(status) })
	e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	if extra != nil {
		extra(e)
	}
	e.ObjEnd()
	writeJSON(w, status, e.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

var (
	errNoCheckout = errors.New("no checkout in progress")
	errNoOrder    = errors.New("no order placed yet")
	errOutOfStock = errors.New("product is out of stock")
	errNotInCart  = errors.New("product is not in the cart")
)

// badRequestError marks malformed input.
type badRequestError struct {
	msg string
	err error
}

func (e *badRequestError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &badRequestError{msg: msg, err: err}
}
