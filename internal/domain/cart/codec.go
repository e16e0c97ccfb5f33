package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// EncodeItems serializes line items as a JSON array. Prices are written as
// strings to keep decimal precision.
func EncodeItems(items []LineItem) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		e.FieldStart("size")
		e.Str(it.Size)
		e.FieldStart("color")
		e.Str(it.Color)
		e.FieldStart("title")
		e.Str(it.Title)
		e.FieldStart("price")
		e.Str(it.Price.String())
		e.FieldStart("image_url")
		e.Str(it.ImageURL)
		e.FieldStart("stock")
		e.Int(it.Stock)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// DecodeItems parses the output of EncodeItems. Unknown fields are skipped
// and prices may be JSON strings or numbers. Empty input is an empty cart.
func DecodeItems(data []byte) ([]LineItem, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var items []LineItem
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var it LineItem
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "product_id":
				it.ProductID, err = d.Str()
			case "size":
				it.Size, err = d.Str()
			case "color":
				it.Color, err = d.Str()
			case "title":
				it.Title, err = d.Str()
			case "image_url":
				it.ImageURL, err = d.Str()
			case "price":
				it.Price, err = decodeDecimal(d)
			case "stock":
				it.Stock, err = d.Int()
			case "quantity":
				it.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return errors.Wrapf(err, "field %q", key)
		}); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode cart items")
	}
	return items, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	default:
		return decimal.Zero, errors.Errorf("unexpected %s for decimal", d.Next())
	}
}
