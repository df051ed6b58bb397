package domain

import "github.com/shopspring/decimal"

const EventOrderCreated = "OrderCreated"

type OrderCreated struct {
	OrderID int64           `json:"order_id"`
	UserID  int64           `json:"user_id"`
	Total   decimal.Decimal `json:"total"`
	Items   []OrderItem     `json:"items"`
}
