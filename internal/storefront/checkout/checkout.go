// Package checkout drives the Address -> Location -> Review -> Placed wizard
// that turns a cart into one order creation request.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/pricing"
	"github.com/Skotchmaster/partify/internal/storefront/cart"
	"github.com/Skotchmaster/partify/internal/transport"
)

type State int

const (
	StateAddress State = iota
	StateLocation
	StateReview
	StatePlaced
)

func (s State) String() string {
	switch s {
	case StateAddress:
		return "Address"
	case StateLocation:
		return "Location"
	case StateReview:
		return "Review"
	case StatePlaced:
		return "Placed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const DefaultCountry = "US"

var (
	ErrNotAuthenticated  = errors.New("checkout: sign in required")
	ErrEmptyCart         = errors.New("checkout: cart is empty")
	ErrIncompleteAddress = errors.New("checkout: incomplete address")
	ErrWrongState        = errors.New("checkout: action not allowed in current step")
)

type Identity struct {
	UserID string
	Name   string
	Email  string
}

type AddressForm struct {
	FullName string
	Phone    string
	Street   string
	City     string
	State    string
	Zip      string
	Country  string
}

// Location is the optional map refinement picked in the second step.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

type OrderPlacer interface {
	CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error)
}

type Recorder interface {
	Record(ids ...string)
}

type Flow struct {
	state    State
	identity Identity
	cart     cart.Cart
	placer   OrderPlacer
	history  Recorder

	form     AddressForm
	location *Location
	order    *models.Order
}

// Start enters the flow. It refuses anonymous callers and empty carts.
func Start(id *Identity, c cart.Cart, placer OrderPlacer, history Recorder) (*Flow, error) {
	if id == nil || id.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return &Flow{
		state:    StateAddress,
		identity: *id,
		cart:     c,
		placer:   placer,
		history:  history,
		form: AddressForm{
			FullName: id.Name,
			Country:  DefaultCountry,
		},
	}, nil
}

func (f *Flow) State() State { return f.state }
func (f *Flow) Form() AddressForm { return f.form }
func (f *Flow) Cart() cart.Cart { return f.cart }
func (f *Flow) Order() *models.Order { return f.order }
func (f *Flow) Quote() pricing.Quote { return f.cart.Quote() }
func (f *Flow) Location() *Location {
	if f.location == nil {
		return nil
	}
	loc := *f.location
	return &loc
}

func (f *Flow) expect(s State) error {
	if f.state != s {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongState, f.state, s)
	}
	return nil
}

// SubmitAddress stores the form and moves to Location. Every field must be
// non-empty; values are kept as typed.
func (f *Flow) SubmitAddress(form AddressForm) error {
	if err := f.expect(StateAddress); err != nil {
		return err
	}

	fields := []struct{ name, value string }{
		{"fullName", form.FullName},
		{"phone", form.Phone},
		{"street", form.Street},
		{"city", form.City},
		{"state", form.State},
		{"zip", form.Zip},
		{"country", form.Country},
	}
	var missing []string
	for _, fl := range fields {
		if strings.TrimSpace(fl.value) == "" {
			missing = append(missing, fl.name)
		}
	}
	f.form = form
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrIncompleteAddress, strings.Join(missing, ", "))
	}

	f.state = StateLocation
	return nil
}

func (f *Flow) PickLocation(address string, lat, lng float64) error {
	if err := f.expect(StateLocation); err != nil {
		return err
	}
	f.location = &Location{Address: strings.TrimSpace(address), Lat: lat, Lng: lng}
	return nil
}

// ConfirmLocation moves to Review. It works whether or not a location was
// ever picked.
func (f *Flow) ConfirmLocation() error {
	if err := f.expect(StateLocation); err != nil {
		return err
	}
	if f.location != nil && f.location.Address != "" && strings.TrimSpace(f.form.Street) == "" {
		f.form.Street = f.location.Address
	}
	f.state = StateReview
	return nil
}

func (f *Flow) Back() error {
	switch f.state {
	case StateLocation:
		f.state = StateAddress
	case StateReview:
		f.state = StateLocation
	default:
		return fmt.Errorf("%w: cannot go back from %s", ErrWrongState, f.state)
	}
	return nil
}

// Request assembles the order creation body from the current cart and form.
// A map-confirmed address wins over the typed street.
func (f *Flow) Request() transport.CreateOrderRequest {
	street := f.form.Street
	if f.location != nil && f.location.Address != "" {
		street = f.location.Address
	}

	lines := f.cart.Lines()
	items := make([]transport.OrderItemRequest, 0, len(lines))
	for _, l := range lines {
		items = append(items, transport.OrderItemRequest{
			Product: l.ProductID,
			Name:    l.Name,
			Image:   l.Image,
			Price:   l.Price,
			Qty:     l.Qty,
		})
	}

	q := f.Quote()
	return transport.CreateOrderRequest{
		OrderItems: items,
		ShippingAddress: transport.ShippingAddressRequest{
			Street:  street,
			City:    f.form.City,
			State:   f.form.State,
			Zip:     f.form.Zip,
			Country: f.form.Country,
		},
		PaymentMethod: models.PaymentCashOnDelivery,
		ItemsPrice:    q.ItemsPrice,
		ShippingPrice: q.ShippingPrice,
		TaxPrice:      q.TaxPrice,
		TotalPrice:    q.TotalPrice,
	}
}

// Place sends the order once. On failure the flow stays in Review so the
// caller can retry by hand.
func (f *Flow) Place(ctx context.Context) (*models.Order, error) {
	if err := f.expect(StateReview); err != nil {
		return nil, err
	}

	order, err := f.placer.CreateOrder(ctx, f.Request())
	if err != nil {
		return nil, err
	}

	if f.history != nil {
		f.history.Record(f.cart.ProductIDs()...)
	}
	f.cart = f.cart.Clear()
	f.order = order
	f.state = StatePlaced
	return order, nil
}
