package model

import "github.com/shopspring/decimal"

// CartLine is one row of the in-progress cart.
// The line id is the product id: a cart holds at most one line per product.
type CartLine struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int64           `json:"quantity"`
}

func (l CartLine) ID() int64 { return l.Product.ID }

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// Cart keeps lines in insertion order. Never persisted.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Find returns the index of the line for productID.
func (c Cart) Find(productID int64) (int, bool) {
	for i, l := range c.Lines {
		if l.Product.ID == productID {
			return i, true
		}
	}
	return -1, false
}

// Quantity returns how many units of productID the cart reserves.
func (c Cart) Quantity(productID int64) int64 {
	if i, ok := c.Find(productID); ok {
		return c.Lines[i].Quantity
	}
	return 0
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c Cart) ItemCount() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy so callers cannot reach engine state.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// LineItems converts the cart into receipt line items.
func (c Cart) LineItems() LineItems {
	items := make(LineItems, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, LineItem{Product: l.Product, Quantity: l.Quantity})
	}
	return items
}
