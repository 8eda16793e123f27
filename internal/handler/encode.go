package handler

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/order"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/pricing"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
)

// money writes a base-currency amount as a JSON number with two decimals.
func money(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.StringFixed(2)))
}

func moneyField(e *jx.Encoder, name string, d decimal.Decimal) {
	e.Field(name, func(e *jx.Encoder) { money(e, d) })
}

func strField(e *jx.Encoder, name, v string) {
	e.Field(name, func(e *jx.Encoder) { e.Str(v) })
}

func strArray(e *jx.Encoder, vs []string) {
	e.ArrStart()
	for _, v := range vs {
		e.Str(v)
	}
	e.ArrEnd()
}

// encodeProduct writes p. When display is set, the price is also rendered in
// that currency.
func (h *Handler) encodeProduct(e *jx.Encoder, p product.Product, display currency.Code) {
	e.Obj(func(e *jx.Encoder) {
		strField(e, "id", p.ID)
		strField(e, "name", p.Name)
		moneyField(e, "price", p.Price)
		if display != "" {
			strField(e, "formattedPrice", h.formatter.Format(p.Price, display))
		}
		strField(e, "category", p.Category)
		strField(e, "description", p.Description)
		e.Field("badges", func(e *jx.Encoder) { strArray(e, p.Badges) })
		e.Field("inStock", func(e *jx.Encoder) { e.Bool(p.InStock) })
		if p.Image != "" {
			strField(e, "image", h.imageBaseURL+p.Image)
		}
	})
}

func (h *Handler) encodeProducts(e *jx.Encoder, ps []product.Product, display currency.Code) {
	e.ArrStart()
	for _, p := range ps {
		h.encodeProduct(e, p, display)
	}
	e.ArrEnd()
}

// encodeQuote writes the price breakdown, with display strings in c.
func (h *Handler) encodeQuote(e *jx.Encoder, q pricing.Quote, c currency.Code) {
	e.Obj(func(e *jx.Encoder) {
		moneyField(e, "subtotal", q.Subtotal)
		moneyField(e, "discount", q.Discount)
		moneyField(e, "shipping", q.Shipping)
		moneyField(e, "total", q.Total)
		moneyField(e, "freeShippingGap", q.FreeShippingGap)
		if q.Promo != nil {
			p := *q.Promo
			e.Field("promo", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					strField(e, "code", p.Code)
					e.Field("percent", func(e *jx.Encoder) { e.Num(jx.Num(p.Percent.String())) })
				})
			})
		}
		e.Field("formatted", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				strField(e, "subtotal", h.formatter.Format(q.Subtotal, c))
				strField(e, "discount", h.formatter.Format(q.Discount, c))
				strField(e, "shipping", h.formatter.Format(q.Shipping, c))
				strField(e, "total", h.formatter.Format(q.Total, c))
			})
		})
	})
}

func (h *Handler) encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		strField(e, "reference", o.Reference)
		e.Field("items", func(e *jx.Encoder) {
			e.ArrStart()
			for _, it := range o.Items {
				e.Obj(func(e *jx.Encoder) {
					strField(e, "productId", it.ProductID)
					strField(e, "name", it.Name)
					moneyField(e, "unitPrice", it.UnitPrice)
					e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
					moneyField(e, "lineTotal", it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
				})
			}
			e.ArrEnd()
		})
		moneyField(e, "subtotal", o.Subtotal)
		moneyField(e, "discount", o.Discount)
		moneyField(e, "shipping", o.Shipping)
		moneyField(e, "total", o.Total)
		strField(e, "formattedTotal", h.formatter.Format(o.Total, o.Currency))
		if o.PromoCode != "" {
			strField(e, "promoCode", o.PromoCode)
		}
		strField(e, "currency", string(o.Currency))
		strField(e, "paymentMethod", o.PaymentMethod)
		strField(e, "shipTo", o.ShipTo)
		strField(e, "createdAt", o.CreatedAt.UTC().Format(time.RFC3339))
	})
}
