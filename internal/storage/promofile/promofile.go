// Package promofile reads and writes promo code tables as YAML.
//
//	codes:
//	  SAVE20: "20"
//	  WELCOME15: "15"
package promofile

import (
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/promo"
)

type document struct {
	Codes map[string]string `yaml:"codes"`
}

// Decode parses a promo table. Codes are normalized and the result is
// validated.
func Decode(r io.Reader) (promo.Table, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty promo file")
		}
		return nil, errors.Wrap(err, "decode yaml")
	}

	t := make(promo.Table, len(doc.Codes))
	for code, v := range doc.Codes {
		pct, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errors.Wrapf(err, "code %q", code)
		}
		t[promo.Normalize(code)] = pct
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load reads the promo table at path.
func Load(path string) (promo.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open promo file")
	}
	defer func() { _ = f.Close() }()

	t, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return t, nil
}

// Encode writes t as YAML with codes in sorted order.
func Encode(w io.Writer, t promo.Table) error {
	doc := document{Codes: make(map[string]string, len(t))}
	for code, pct := range t {
		doc.Codes[code] = pct.String()
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return enc.Close()
}
