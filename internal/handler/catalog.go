package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
)

func (h *Handler) listProducts(r *http.Request) (body, error) {
	params := r.URL.Query()
	q, err := parseQuery(params)
	if err != nil {
		return nil, err
	}
	display, err := displayCurrency(params)
	if err != nil {
		return nil, err
	}

	all, err := h.products.List(r.Context())
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	found := product.Filter(all, q)

	return func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("products", func(e *jx.Encoder) { h.encodeProducts(e, found, display) })
			e.Field("total", func(e *jx.Encoder) { e.Int(len(found)) })
		})
	}, nil
}

func (h *Handler) getProduct(r *http.Request) (body, error) {
	display, err := displayCurrency(r.URL.Query())
	if err != nil {
		return nil, err
	}
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	return func(e *jx.Encoder) { h.encodeProduct(e, *p, display) }, nil
}

func (h *Handler) listCategories(r *http.Request) (body, error) {
	all, err := h.products.List(r.Context())
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	categories := product.Categories(all)
	return func(e *jx.Encoder) { strArray(e, categories) }, nil
}

func (h *Handler) listCurrencies(*http.Request) (body, error) {
	return func(e *jx.Encoder) {
		e.ArrStart()
		for _, c := range currency.Codes() {
			rate, ok := h.currencies[c]
			if !ok {
				continue
			}
			e.Obj(func(e *jx.Encoder) {
				strField(e, "code", string(c))
				strField(e, "symbol", rate.Symbol)
				strField(e, "name", rate.Name)
				e.Field("rate", func(e *jx.Encoder) { e.Num(jx.Num(rate.Rate.String())) })
			})
		}
		e.ArrEnd()
	}, nil
}

// parseQuery builds a product query. Categories may be repeated or comma
// separated; "all" means no category filter.
func parseQuery(params url.Values) (product.Query, error) {
	sort, err := product.ParseSort(params.Get("sort"))
	if err != nil {
		return product.Query{}, badRequest("invalid sort", err)
	}
	q := product.Query{
		Search: params.Get("search"),
		Sort:   sort,
	}
	for _, v := range params["category"] {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" && !strings.EqualFold(c, "all") {
				q.Categories = append(q.Categories, c)
			}
		}
	}
	if q.MinPrice, err = parsePrice(params, "minPrice"); err != nil {
		return product.Query{}, err
	}
	if q.MaxPrice, err = parsePrice(params, "maxPrice"); err != nil {
		return product.Query{}, err
	}
	return q, nil
}

func parsePrice(params url.Values, name string) (*decimal.Decimal, error) {
	v := params.Get(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, badRequest("invalid "+name, err)
	}
	return &d, nil
}

func displayCurrency(params url.Values) (currency.Code, error) {
	v := params.Get("currency")
	if v == "" {
		return "", nil
	}
	c, err := currency.Parse(strings.ToUpper(v))
	if err != nil {
		return "", badRequest("invalid currency", err)
	}
	return c, nil
}
