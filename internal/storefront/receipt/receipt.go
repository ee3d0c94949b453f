// Package receipt renders a placed order as a printable plain-text receipt.
package receipt

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosuri/uitable"

	"github.com/Skotchmaster/partify/internal/models"
)

const (
	Header     = "PARTIFY PRO"
	DateLayout = "January 2, 2006"

	nameLimit = 55
	nameKeep  = 52
)

type Line struct {
	Name      string
	Qty       int
	UnitPrice string
	Total     string
}

type Receipt struct {
	Number    string
	Date      string
	BillName  string
	BillEmail string
	DeliverTo []string
	Lines     []Line
	Subtotal  string
	Shipping  string
	Tax       string
	Total     string
	Payment   string
}

// New builds a receipt for o. buyer may be nil when the order carries its own
// customer summary.
func New(o models.Order, buyer *models.Customer) Receipt {
	if buyer == nil {
		buyer = o.Customer
	}
	if buyer == nil {
		buyer = &models.Customer{}
	}

	addr := o.ShippingAddress
	r := Receipt{
		Number:    Number(o.ID),
		Date:      date(o.CreatedAt),
		BillName:  buyer.Name,
		BillEmail: buyer.Email,
		DeliverTo: []string{
			addr.Street,
			fmt.Sprintf("%s, %s %s", addr.City, addr.State, addr.Zip),
			addr.Country,
		},
		Subtotal: Money(o.ItemsPrice),
		Shipping: shipping(o.ShippingPrice),
		Tax:      Money(o.TaxPrice),
		Total:    Money(o.TotalPrice),
		Payment:  o.PaymentMethod,
	}
	for _, it := range o.Items {
		r.Lines = append(r.Lines, Line{
			Name:      TruncateName(it.Name),
			Qty:       it.Qty,
			UnitPrice: Money(it.Price),
			Total:     Money(it.Price * float64(it.Qty)),
		})
	}
	return r
}

// Number is the short order number shown to buyers.
func Number(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

func Money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func TruncateName(name string) string {
	r := []rune(name)
	if len(r) <= nameLimit {
		return name
	}
	return string(r[:nameKeep]) + "…"
}

func shipping(v float64) string {
	if v == 0 {
		return "FREE"
	}
	return Money(v)
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func (r Receipt) String() string {
	var b strings.Builder

	b.WriteString(Header + "\n")
	fmt.Fprintf(&b, "Order #%s\n", r.Number)
	if r.Date != "" {
		fmt.Fprintf(&b, "Date: %s\n", r.Date)
	}
	b.WriteString("\nBill To:\n")
	fmt.Fprintf(&b, "  %s\n  %s\n", r.BillName, r.BillEmail)
	b.WriteString("\nDeliver To:\n")
	for _, l := range r.DeliverTo {
		fmt.Fprintf(&b, "  %s\n", l)
	}
	b.WriteString("\n")

	items := uitable.New()
	items.MaxColWidth = nameKeep + 1
	items.RightAlign(1)
	items.RightAlign(2)
	items.RightAlign(3)
	items.AddRow("ITEM", "QTY", "PRICE", "TOTAL")
	for _, l := range r.Lines {
		items.AddRow(l.Name, l.Qty, l.UnitPrice, l.Total)
	}
	b.WriteString(items.String())
	b.WriteString("\n\n")

	sums := uitable.New()
	sums.RightAlign(1)
	sums.AddRow("Subtotal", r.Subtotal)
	sums.AddRow("Shipping", r.Shipping)
	sums.AddRow("Tax", r.Tax)
	sums.AddRow("Total", r.Total)
	sums.AddRow("Payment", r.Payment)
	b.WriteString(sums.String())
	b.WriteString("\n")

	return b.String()
}

func (r Receipt) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}
