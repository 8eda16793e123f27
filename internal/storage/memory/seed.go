package memory

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
)

// ParseProducts decodes a JSON array of catalog products. Missing inStock
// defaults to true.
func ParseProducts(data []byte) ([]product.Product, error) {
	var products []product.Product
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return errors.Wrapf(err, "product %d", len(products))
		}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode products array")
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	p := product.Product{InStock: true}
	var hasPrice bool
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "category":
			p.Category, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "image":
			p.Image, err = d.Str()
		case "inStock":
			p.InStock, err = d.Bool()
		case "price":
			p.Price, err = decodeDecimal(d)
			hasPrice = err == nil
		case "badges":
			err = d.Arr(func(d *jx.Decoder) error {
				b, err := d.Str()
				if err != nil {
					return err
				}
				p.Badges = append(p.Badges, b)
				return nil
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return product.Product{}, err
	}

	switch {
	case p.ID == "":
		return product.Product{}, errors.New("missing id")
	case p.Name == "":
		return product.Product{}, errors.Errorf("%s: missing name", p.ID)
	case !hasPrice:
		return product.Product{}, errors.Errorf("%s: missing price", p.ID)
	case p.Price.IsNegative():
		return product.Product{}, errors.Errorf("%s: negative price %s", p.ID, p.Price)
	}
	return p, nil
}

// decodeDecimal accepts both JSON numbers and numeric strings.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(n.String())
	}
}
