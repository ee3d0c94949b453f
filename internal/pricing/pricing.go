// Package pricing implements the storefront checkout pricing rule.
package pricing

import "github.com/shopspring/decimal"

var (
	FreeShippingThreshold = decimal.NewFromInt(150)
	FlatShipping          = decimal.RequireFromString("12.99")
	TaxRate               = decimal.RequireFromString("0.08")
)

// Tolerance is the largest difference accepted between a submitted amount and
// the recomputed one.
const Tolerance = 0.01

type Quote struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

type Line struct {
	Price float64
	Qty   int
}

// Subtotal sums price*qty exactly before converting back to float.
func Subtotal(lines []Line) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return sum.InexactFloat64()
}

// ForSubtotal applies the rule: free shipping strictly above 150, otherwise
// 12.99; tax is 8% rounded to cents; total is rounded to cents.
func ForSubtotal(subtotal float64) Quote {
	sub := decimal.NewFromFloat(subtotal)

	shipping := FlatShipping
	if sub.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := sub.Mul(TaxRate).Round(2)
	total := sub.Add(shipping).Add(tax).Round(2)

	return Quote{
		ItemsPrice:    sub.Round(2).InexactFloat64(),
		ShippingPrice: shipping.InexactFloat64(),
		TaxPrice:      tax.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
	}
}

func ForLines(lines []Line) Quote {
	return ForSubtotal(Subtotal(lines))
}

// Matches reports whether every field of got is within Tolerance of q.
func (q Quote) Matches(got Quote) bool {
	return near(q.ItemsPrice, got.ItemsPrice) &&
		near(q.ShippingPrice, got.ShippingPrice) &&
		near(q.TaxPrice, got.TaxPrice) &&
		near(q.TotalPrice, got.TotalPrice)
}

func near(a, b float64) bool {
	d := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return d.LessThanOrEqual(decimal.NewFromFloat(Tolerance))
}
