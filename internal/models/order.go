package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem represents a single item within an order.
type OrderItem struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	OrderID   string          `json:"-" gorm:"type:varchar(36);index"`
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"` // Price at the time of order
}

// Order is the record left behind by a successful checkout.
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID     string          `json:"session_id" gorm:"type:varchar(36);index"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2)"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(16)"`
	CardType      string          `json:"card_type,omitempty" gorm:"type:varchar(16)"`
	CardLast4     string          `json:"card_last4,omitempty" gorm:"type:varchar(4)"`
	Status        string          `json:"status" gorm:"type:varchar(16)"` // "paid" for now
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CheckoutEvent is published once an order has been placed.
type CheckoutEvent struct {
	OrderID       string          `json:"order_id"`
	SessionID     string          `json:"session_id"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	PlacedAt      time.Time       `json:"placed_at"`
}
