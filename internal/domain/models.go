package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	ImageURL    string          `db:"image_url" json:"image_url,omitempty"`
	IsFeatured  bool            `db:"is_featured" json:"is_featured"`
	CreatedAt   string          `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string          `db:"updated_at" json:"updated_at,omitempty"`
}

type Cart struct {
	ID     string `db:"id"`
	UserID string `db:"user_id"` // unique, one cart per user
	Items  []CartItem
}

type CartItem struct {
	ID        string          `db:"id"`
	CartID    string          `db:"cart_id"`
	ProductID string          `db:"product_id"`
	Qty       decimal.Decimal `db:"qty"`
}

type ShippingAddress struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}

type Order struct {
	ID        string
	UserID    string
	OrderDate time.Time // always UTC
	Items     []OrderItem
	Shipping  ShippingAddress
}

type OrderItem struct {
	ID        string          `db:"id"`
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Qty       decimal.Decimal `db:"qty"`
	// Price is the product price frozen at checkout time; later catalog
	// changes never touch it.
	Price decimal.Decimal `db:"price"`
}
