package models

import "strings"

// CartLine is one distinct dish in the cart. Quantity is always at least 1.
type CartLine struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Icon     string `json:"icon"`
	Quantity int    `json:"quantity"`
}

// LineTotal is price times quantity.
func (l CartLine) LineTotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Cart holds the lines of an in-progress order in insertion order.
// The zero value is not usable; build one with NewCart.
type Cart struct {
	catalog Catalog
	lines   []CartLine
}

func NewCart(catalog Catalog) *Cart {
	return &Cart{catalog: catalog}
}

// Add puts one more of the named dish in the cart. A new line snapshots the
// catalog price and icon. Names not on the menu are ignored and Add reports
// false.
func (c *Cart) Add(name string) bool {
	for i := range c.lines {
		if c.lines[i].Name == name {
			c.lines[i].Quantity++
			return true
		}
	}
	item, ok := c.catalog.Find(name)
	if !ok {
		return false
	}
	c.lines = append(c.lines, CartLine{Name: item.Name, Price: item.Price, Icon: item.Icon, Quantity: 1})
	return true
}

// ChangeQuantity adjusts a line by delta. When the result would be zero or
// less the line is dropped. found is false if no such line exists.
func (c *Cart) ChangeQuantity(name string, delta int) (removed, found bool) {
	for i := range c.lines {
		if c.lines[i].Name != name {
			continue
		}
		quantity := c.lines[i].Quantity + delta
		if quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true, true
		}
		c.lines[i].Quantity = quantity
		return false, true
	}
	return false, false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Subtotal sums price x quantity over all lines.
func (c *Cart) Subtotal() int64 {
	return Subtotal(c.lines)
}

// Subtotal sums price x quantity over lines.
func Subtotal(lines []CartLine) int64 {
	var sum int64
	for _, line := range lines {
		sum += line.LineTotal()
	}
	return sum
}

// DeliveryFee is the flat surcharge when an address is given, zero otherwise.
// Whitespace-only addresses count as empty.
func DeliveryFee(address string, flat int64) int64 {
	if strings.TrimSpace(address) == "" {
		return 0
	}
	return flat
}

// Totals is the client-side price estimate shown under the cart. The backend
// recomputes the real total on submission.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	Total       int64 `json:"total"`
}

func EstimateTotals(lines []CartLine, address string, flatFee int64) Totals {
	subtotal := Subtotal(lines)
	fee := DeliveryFee(address, flatFee)
	return Totals{Subtotal: subtotal, DeliveryFee: fee, Total: subtotal + fee}
}
