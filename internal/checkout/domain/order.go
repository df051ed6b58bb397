package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the payload sent to the order service. IdempotencyKey
// travels as a header, not in the body.
type OrderRequest struct {
	Items          []OrderLine     `json:"items"`
	Total          decimal.Decimal `json:"total"`
	UserID         int64           `json:"user_id"`
	IdempotencyKey string          `json:"-"`
}

// SamePayload reports whether r and o would place the same order.
func (r OrderRequest) SamePayload(o OrderRequest) bool {
	return r.UserID == o.UserID && r.Total.Equal(o.Total) && slices.Equal(r.Items, o.Items)
}

// OrderConfirmation echoes the request with the id the backend assigned.
type OrderConfirmation struct {
	ID        int64           `json:"id"`
	Items     []OrderLine     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	UserID    int64           `json:"user_id"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
