package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryEngines      Category = "Engines"
	CategoryBrakes       Category = "Brakes"
	CategoryLighting     Category = "Lighting"
	CategorySuspension   Category = "Suspension"
	CategoryFilters      Category = "Filters"
	CategoryExhaust      Category = "Exhaust"
	CategoryTransmission Category = "Transmission"
	CategoryElectrical   Category = "Electrical"
	CategoryBody         Category = "Body"
	CategoryAccessories  Category = "Accessories"
)

var Categories = []Category{
	CategoryEngines, CategoryBrakes, CategoryLighting, CategorySuspension, CategoryFilters,
	CategoryExhaust, CategoryTransmission, CategoryElectrical, CategoryBody, CategoryAccessories,
}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s OrderStatus) Valid() bool {
	return slices.Contains(OrderStatuses, s)
}

const (
	PaymentCashOnDelivery = "Cash on Delivery"

	DefaultRating = 4.5
)

func NewID() string {
	return uuid.NewString()
}

type Product struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"             json:"id"`
	Name            string    `gorm:"not null"                    bson:"name"            json:"name"`
	PartNumber      string    `gorm:"not null;uniqueIndex"        bson:"partNumber"      json:"partNumber"`
	Category        Category  `gorm:"not null;index"              bson:"category"        json:"category"`
	Price           float64   `gorm:"not null"                    bson:"price"           json:"price"`
	OriginalPrice   *float64  `                                   bson:"originalPrice"   json:"originalPrice"`
	Description     string    `gorm:"not null"                    bson:"description"     json:"description"`
	Image           string    `gorm:"not null"                    bson:"image"           json:"image"`
	Stock           int       `gorm:"not null"                    bson:"stock"           json:"stock"`
	Rating          float64   `gorm:"not null"                    bson:"rating"          json:"rating"`
	NumReviews      int       `gorm:"not null"                    bson:"numReviews"      json:"numReviews"`
	CompatibleMakes []string  `gorm:"serializer:json;type:text"   bson:"compatibleMakes" json:"compatibleMakes"`
	CompatibleYears []int     `gorm:"serializer:json;type:text"   bson:"compatibleYears" json:"compatibleYears"`
	IsFeatured      bool      `gorm:"not null;index"              bson:"isFeatured"      json:"isFeatured"`
	Badge           *string   `                                   bson:"badge"           json:"badge"`
	CreatedAt       time.Time `gorm:"index"                       bson:"createdAt"       json:"createdAt"`
	UpdatedAt       time.Time `                                   bson:"updatedAt"       json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

type OrderItem struct {
	Product string  `bson:"product" json:"product"`
	Name    string  `bson:"name"    json:"name"`
	Image   string  `bson:"image"   json:"image"`
	Price   float64 `bson:"price"   json:"price"`
	Qty     int     `bson:"qty"     json:"qty"`
}

type ShippingAddress struct {
	Street  string `gorm:"not null" bson:"street"  json:"street"`
	City    string `gorm:"not null" bson:"city"    json:"city"`
	State   string `gorm:"not null" bson:"state"   json:"state"`
	Zip     string `gorm:"not null" bson:"zip"     json:"zip"`
	Country string `gorm:"not null" bson:"country" json:"country"`
}

// Customer is the owner summary attached to orders on admin and detail reads.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)"               bson:"_id"             json:"id"`
	UserID          string          `gorm:"not null;index;type:varchar(36)"           bson:"user"            json:"user"`
	Items           []OrderItem     `gorm:"serializer:json;type:text;not null"        bson:"items"           json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"         bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string          `gorm:"not null"                                  bson:"paymentMethod"   json:"paymentMethod"`
	ItemsPrice      float64         `gorm:"not null"                                  bson:"itemsPrice"      json:"itemsPrice"`
	ShippingPrice   float64         `gorm:"not null"                                  bson:"shippingPrice"   json:"shippingPrice"`
	TaxPrice        float64         `gorm:"not null"                                  bson:"taxPrice"        json:"taxPrice"`
	TotalPrice      float64         `gorm:"not null"                                  bson:"totalPrice"      json:"totalPrice"`
	Status          OrderStatus     `gorm:"not null;index"                            bson:"status"          json:"status"`
	IsDelivered     bool            `gorm:"not null"                                  bson:"isDelivered"     json:"isDelivered"`
	DeliveredAt     *time.Time      `                                                 bson:"deliveredAt"     json:"deliveredAt"`
	CreatedAt       time.Time       `gorm:"index"                                     bson:"createdAt"       json:"createdAt"`
	UpdatedAt       time.Time       `                                                 bson:"updatedAt"       json:"updatedAt"`

	Customer *Customer `gorm:"-" bson:"-" json:"customer,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = NewID()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"       json:"id"`
	Name         string    `gorm:"not null"                    bson:"name"      json:"name"`
	Email        string    `gorm:"not null;uniqueIndex"        bson:"email"     json:"email"`
	PasswordHash string    `gorm:"not null"                    bson:"password"  json:"-"`
	IsAdmin      bool      `gorm:"not null"                    bson:"isAdmin"   json:"isAdmin"`
	CreatedAt    time.Time `gorm:"index"                       bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `                                   bson:"updatedAt" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

func (u User) AsCustomer() *Customer {
	return &Customer{ID: u.ID, Name: u.Name, Email: u.Email}
}
