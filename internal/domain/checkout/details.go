package checkout

import (
	"strings"

	"github.com/go-faster/errors"
)

// DefaultCountry is used when an address does not name a country.
const DefaultCountry = "India"

// Address is the shipping address collected in the first step.
type Address struct {
	Name       string
	Email      string
	Phone      string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// missing returns the names of required fields that are blank after trimming.
// Country is not validated.
func (a Address) missing() []string {
	return blank(
		field{"name", a.Name},
		field{"email", a.Email},
		field{"phone", a.Phone},
		field{"address", a.Street},
		field{"city", a.City},
		field{"state", a.State},
		field{"postalCode", a.PostalCode},
	)
}

// Method is a supported payment method.
type Method string

const (
	MethodCard Method = "card"
	MethodUPI  Method = "upi"
	MethodCOD  Method = "cod"
)

// ErrUnknownMethod is returned for payment methods outside the supported set.
var ErrUnknownMethod = errors.New("unknown payment method")

// ParseMethod validates s as a payment method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodCard, MethodUPI, MethodCOD:
		return m, nil
	default:
		return "", errors.Wrapf(ErrUnknownMethod, "%q", s)
	}
}

// Label returns the display name of m.
func (m Method) Label() string {
	switch m {
	case MethodCard:
		return "Credit/Debit Card"
	case MethodUPI:
		return "UPI Payment"
	case MethodCOD:
		return "Cash on Delivery"
	default:
		return string(m)
	}
}

// Card holds card payment fields as entered.
type Card struct {
	Number string
	Expiry string
	CVV    string
	Holder string
}

// Payment is the payment method chosen in the second step together with the
// fields of every method, so switching methods does not lose input.
type Payment struct {
	Method Method
	Card   Card
	UPIID  string
}

// missing returns the blank fields required by the chosen method.
func (p Payment) missing() []string {
	switch p.Method {
	case MethodCard:
		return blank(
			field{"cardNumber", p.Card.Number},
			field{"expiry", p.Card.Expiry},
			field{"cvv", p.Card.CVV},
			field{"cardHolder", p.Card.Holder},
		)
	case MethodUPI:
		return blank(field{"upiId", p.UPIID})
	case MethodCOD:
		return nil
	default:
		return []string{"method"}
	}
}

type field struct {
	name  string
	value string
}

func blank(fields ...field) []string {
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}
