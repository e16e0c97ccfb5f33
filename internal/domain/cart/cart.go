// Package cart aggregates "add to cart" style events into line items keyed by
// (product, size, color). The aggregation is pure; persistence and catalog
// lookups happen in Service.
package cart

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

const (
	// NoSize stands in for a missing size in a line item key.
	NoSize = "no-size"
	// NoColor stands in for a missing color in a line item key.
	NoColor = "no-color"

	keySep = "|"
)

// ErrInvalidKey is returned by ParseKey for malformed keys.
var ErrInvalidKey = errors.New("invalid line item key")

// Key identifies a line item.
type Key struct {
	ProductID string
	Size      string
	Color     string
}

// NewKey builds a Key, substituting the sentinels for empty size or color.
func NewKey(productID, size, color string) Key {
	if size == "" {
		size = NoSize
	}
	if color == "" {
		color = NoColor
	}
	return Key{ProductID: productID, Size: size, Color: color}
}

// String encodes the key as "product|size|color".
func (k Key) String() string {
	return k.ProductID + keySep + k.Size + keySep + k.Color
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(s, keySep, 3)
	if len(parts) != 3 || parts[0] == "" {
		return Key{}, errors.Wrapf(ErrInvalidKey, "%q", s)
	}
	return NewKey(parts[0], parts[1], parts[2]), nil
}

// Product is the catalog snapshot copied into a line item when it is added.
type Product struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	ImageURL string
	Stock    int
}

// LineItem is one distinct (product, size, color) entry with its quantity.
// Title, Price, ImageURL and Stock are snapshots taken at add time.
type LineItem struct {
	Key
	Title    string
	Price    decimal.Decimal
	ImageURL string
	Stock    int
	Quantity int
}

// Subtotal returns Price × Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart holds line items in insertion order. The zero value is an empty cart.
// A Cart never contains an item with a quantity below 1.
type Cart struct {
	items []LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// FromItems restores a cart from a persisted snapshot. Repeated keys are
// merged and quantities are clamped to the snapshot stock; entries left with
// no quantity are dropped, so a damaged snapshot cannot break the cart's
// invariants.
func FromItems(items []LineItem) *Cart {
	c := New()
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		it.Key = NewKey(it.ProductID, it.Size, it.Color)
		if i := c.index(it.Key); i >= 0 {
			c.items[i].Quantity = clamp(c.items[i].Quantity+it.Quantity, c.items[i].Stock)
			continue
		}
		if it.Quantity = clamp(it.Quantity, it.Stock); it.Quantity < 1 {
			continue
		}
		c.items = append(c.items, it)
	}
	return c
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the line item for k.
func (c *Cart) Get(k Key) (LineItem, bool) {
	if i := c.index(k); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

// Len returns the number of distinct line items.
func (c *Cart) Len() int {
	return len(c.items)
}

// TotalItems returns the sum of all quantities.
func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice returns the sum of price × quantity over all items.
func (c *Cart) TotalPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

func (c *Cart) index(k Key) int {
	for i := range c.items {
		if c.items[i].Key == k {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
}
