// Package cart holds the shopper's basket as an immutable value: every
// operation returns a new Cart and leaves the receiver untouched.
package cart

import (
	"slices"

	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/pricing"
)

// Item is a product snapshot taken when the product was added.
type Item struct {
	ProductID  string  `json:"product"`
	Name       string  `json:"name"`
	Image      string  `json:"image"`
	PartNumber string  `json:"partNumber"`
	Price      float64 `json:"price"`
	Qty        int     `json:"qty"`
}

type Cart struct {
	items []Item
}

func New(items ...Item) Cart {
	var c Cart
	for _, it := range items {
		c = c.addItem(it)
	}
	return c
}

func Snapshot(p models.Product) Item {
	return Item{
		ProductID:  p.ID,
		Name:       p.Name,
		Image:      p.Image,
		PartNumber: p.PartNumber,
		Price:      p.Price,
	}
}

func (c Cart) index(productID string) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.ProductID == productID })
}

// Add increments the line for p, or appends one. qty below 1 counts as 1.
func (c Cart) Add(p models.Product, qty int) Cart {
	it := Snapshot(p)
	it.Qty = qty
	return c.addItem(it)
}

func (c Cart) addItem(it Item) Cart {
	if it.Qty < 1 {
		it.Qty = 1
	}
	items := slices.Clone(c.items)
	if i := c.index(it.ProductID); i >= 0 {
		items[i].Qty += it.Qty
		return Cart{items: items}
	}
	return Cart{items: append(items, it)}
}

func (c Cart) Remove(productID string) Cart {
	i := c.index(productID)
	if i < 0 {
		return c
	}
	return Cart{items: slices.Delete(slices.Clone(c.items), i, i+1)}
}

// SetQuantity overwrites the line quantity; qty <= 0 removes the line.
func (c Cart) SetQuantity(productID string, qty int) Cart {
	if qty <= 0 {
		return c.Remove(productID)
	}
	i := c.index(productID)
	if i < 0 {
		return c
	}
	items := slices.Clone(c.items)
	items[i].Qty = qty
	return Cart{items: items}
}

func (c Cart) Clear() Cart {
	return Cart{}
}

func (c Cart) Lines() []Item {
	return slices.Clone(c.items)
}

func (c Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Qty
	}
	return n
}

func (c Cart) Subtotal() float64 {
	return pricing.Subtotal(c.PricingLines())
}

func (c Cart) PricingLines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, pricing.Line{Price: it.Price, Qty: it.Qty})
	}
	return lines
}

func (c Cart) Quote() pricing.Quote {
	return pricing.ForLines(c.PricingLines())
}

func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.items))
	for _, it := range c.items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
