package supplier

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
)

// DecodeGzipFeed decompresses and decodes a gzip-compressed feed.
func DecodeGzipFeed(r io.Reader) ([]Product, error) {
	gz, err := pgzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()
	return DecodeFeed(gz)
}

// DecodeFeed streams a JSON array of product objects without buffering the
// whole feed. Unknown fields are skipped so feed schema additions do not break
// the sync.
func DecodeFeed(r io.Reader) ([]Product, error) {
	d := jx.Decode(r, 64*1024)

	var products []Product
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode product feed")
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (Product, error) {
	// Feeds default to active unless the entry says otherwise.
	p := Product{Active: true}

	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id", "product_id", "sku":
			id, err := decodeStringish(d)
			if err != nil {
				return errors.Wrap(err, "id")
			}
			p.ID = id
		case "name", "title":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "name")
			}
			p.Name = s
		case "description":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "description")
			}
			p.Description = s
		case "price", "selling_price":
			v, err := decodePrice(d)
			if err != nil {
				return errors.Wrap(err, "price")
			}
			p.Price = v
		case "mrp", "list_price":
			v, err := decodePrice(d)
			if err != nil {
				return errors.Wrap(err, "mrp")
			}
			p.MRP = v
		case "stock", "quantity", "stock_quantity":
			n, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "stock")
			}
			p.Stock = n
		case "active", "is_active":
			b, err := d.Bool()
			if err != nil {
				return errors.Wrap(err, "active")
			}
			p.Active = b
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return Product{}, err
	}

	if p.ID == "" {
		return Product{}, errors.New("feed entry missing id")
	}
	return p, nil
}

// decodeStringish accepts both string and numeric ids.
func decodeStringish(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Number {
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	}
	return d.Str()
}

// decodePrice accepts a JSON number or numeric string; null means no price.
func decodePrice(d *jx.Decoder) (*decimal.Decimal, error) {
	switch d.Next() {
	case jx.Null:
		return nil, d.Null()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return nil, err
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		n, err := d.Num()
		if err != nil {
			return nil, err
		}
		v, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}
