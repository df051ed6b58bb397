package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusConfirmed OrderStatus = "confirmed"
)

type Order struct {
	ID        int64
	UserID    int64
	Items     []OrderItem
	Total     decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// NewOrder builds an unsaved order; the repository assigns the id.
func NewOrder(userID int64, items []OrderItem, total decimal.Decimal) Order {
	now := time.Now().UTC()
	return Order{
		UserID:    userID,
		Items:     items,
		Total:     total,
		Status:    StatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
