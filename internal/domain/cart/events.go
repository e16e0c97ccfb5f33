package cart

// Event is a cart mutation. Applying an event never fails: out-of-range
// quantities are clamped.
type Event interface {
	apply(c *Cart)
}

// Added adds Quantity units of Product in the given size and color.
type Added struct {
	Product  Product
	Quantity int
	Size     string
	Color    string
}

// QuantitySet replaces the quantity of an existing line item. A quantity
// below 1 removes the item.
type QuantitySet struct {
	Key      Key
	Quantity int
}

// Removed deletes a line item.
type Removed struct {
	Key Key
}

// Cleared empties the cart.
type Cleared struct{}

// Apply applies events in order.
func (c *Cart) Apply(events ...Event) {
	for _, ev := range events {
		ev.apply(c)
	}
}

// Replay builds a cart from an event log.
func Replay(events []Event) *Cart {
	c := New()
	c.Apply(events...)
	return c
}

func (e Added) apply(c *Cart) {
	k := NewKey(e.Product.ID, e.Size, e.Color)
	add := max(e.Quantity, 0)

	if i := c.index(k); i >= 0 {
		qty := clamp(c.items[i].Quantity+add, e.Product.Stock)
		if qty == 0 {
			c.removeAt(i)
			return
		}
		c.items[i].Quantity = qty
		c.items[i].Stock = e.Product.Stock
		return
	}

	qty := clamp(add, e.Product.Stock)
	if qty == 0 {
		return
	}
	c.items = append(c.items, LineItem{
		Key:      k,
		Title:    e.Product.Title,
		Price:    e.Product.Price,
		ImageURL: e.Product.ImageURL,
		Stock:    e.Product.Stock,
		Quantity: qty,
	})
}

func (e QuantitySet) apply(c *Cart) {
	i := c.index(e.Key)
	if i < 0 {
		return
	}
	qty := e.Quantity
	if qty >= 1 {
		qty = clamp(qty, c.items[i].Stock)
	}
	if qty < 1 {
		c.removeAt(i)
		return
	}
	c.items[i].Quantity = qty
}

func (e Removed) apply(c *Cart) {
	if i := c.index(e.Key); i >= 0 {
		c.removeAt(i)
	}
}

func (Cleared) apply(c *Cart) {
	c.items = nil
}

// clamp bounds qty to [0, stock].
func clamp(qty, stock int) int {
	return max(0, min(qty, stock))
}
