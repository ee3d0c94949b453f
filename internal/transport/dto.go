package transport

import (
	"encoding/json"

	"github.com/Skotchmaster/partify/internal/models"
)

type ProductQuery struct {
	Category string
	Search   string
	IDs      string
	Make     string
	Model    string
	Year     string
	Featured string
	Page     int
	Limit    int
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

type CreateProductRequest struct {
	Name            string   `json:"name"`
	PartNumber      string   `json:"partNumber"`
	Category        string   `json:"category"`
	Price           *float64 `json:"price"`
	OriginalPrice   *float64 `json:"originalPrice"`
	Description     string   `json:"description"`
	Image           string   `json:"image"`
	Stock           *int     `json:"stock"`
	Rating          *float64 `json:"rating"`
	NumReviews      *int     `json:"numReviews"`
	CompatibleMakes []string `json:"compatibleMakes"`
	CompatibleYears []int    `json:"compatibleYears"`
	IsFeatured      bool     `json:"isFeatured"`
	Badge           *string  `json:"badge"`
}

// UpdateProductRequest carries a partial update; nil fields are left as is.
// An explicit "originalPrice": null clears the original price.
type UpdateProductRequest struct {
	Name            *string       `json:"name"`
	PartNumber      *string       `json:"partNumber"`
	Category        *string       `json:"category"`
	Price           *float64      `json:"price"`
	OriginalPrice   NullableFloat `json:"originalPrice"`
	Description     *string       `json:"description"`
	Image           *string       `json:"image"`
	Stock           *int          `json:"stock"`
	Rating          *float64      `json:"rating"`
	NumReviews      *int          `json:"numReviews"`
	CompatibleMakes *[]string     `json:"compatibleMakes"`
	CompatibleYears *[]int        `json:"compatibleYears"`
	IsFeatured      *bool         `json:"isFeatured"`
	Badge           *string       `json:"badge"`
}

// NullableFloat records whether the field was present, so an explicit null
// (clear the value) differs from an omitted field (keep it).
type NullableFloat struct {
	Set   bool
	Value *float64
}

func (n *NullableFloat) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n NullableFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value)
}

type OrderItemRequest struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
	Qty     int     `json:"qty"`
}

type ShippingAddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

type QuoteItem struct {
	Product string `json:"product"`
	Qty     int    `json:"qty"`
}

type QuoteRequest struct {
	Items []QuoteItem `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

type Stats struct {
	ProductCount int64          `json:"productCount"`
	OrderCount   int64          `json:"orderCount"`
	UserCount    int64          `json:"userCount"`
	Revenue      float64        `json:"revenue"`
	RecentOrders []models.Order `json:"recentOrders"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
