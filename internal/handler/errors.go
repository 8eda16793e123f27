package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/checkout"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/promo"
)

// classify maps a domain error to a status code, a client message and
// optional extra response fields.
func classify(err error) (int, string, func(e *jx.Encoder)) {
	var (
		badReq     *badRequestError
		validation *checkout.ValidationError
		payment    *checkout.PaymentFailedError
		invalid    *promo.InvalidCodeError
	)
	switch {
	case errors.As(err, &badReq):
		return http.StatusBadRequest, badReq.Error(), nil
	case errors.As(err, &validation):
		missing := validation.Missing
		msg := "please fill all required fields"
		if validation.Step == checkout.StepPayment {
			msg = "please complete payment information"
		}
		return http.StatusUnprocessableEntity, msg, func(e *jx.Encoder) {
			e.Field("step", func(e *jx.Encoder) { e.Str(validation.Step.String()) })
			e.Field("missing", func(e *jx.Encoder) {
				e.ArrStart()
				for _, m := range missing {
					e.Str(m)
				}
				e.ArrEnd()
			})
		}
	case errors.As(err, &payment):
		ref := payment.Reference
		return http.StatusPaymentRequired, "payment failed", func(e *jx.Encoder) {
			e.Field("reference", func(e *jx.Encoder) { e.Str(ref) })
		}
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, invalid.Error(), nil
	case errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, "product not found", nil
	case errors.Is(err, errNotInCart):
		return http.StatusNotFound, errNotInCart.Error(), nil
	case errors.Is(err, errNoCheckout):
		return http.StatusNotFound, errNoCheckout.Error(), nil
	case errors.Is(err, errNoOrder):
		return http.StatusNotFound, errNoOrder.Error(), nil
	case errors.Is(err, errOutOfStock):
		return http.StatusConflict, errOutOfStock.Error(), nil
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInFlight),
		errors.Is(err, checkout.ErrWrongStep):
		return http.StatusConflict, err.Error(), nil
	case errors.Is(err, currency.ErrUnsupported),
		errors.Is(err, checkout.ErrUnknownMethod):
		return http.StatusBadRequest, err.Error(), nil
	default:
		return http.StatusInternalServerError, err.Error(), nil
	}
}
