package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/inventory/domain"
	orderdom "github.com/dmehra2102/storefront/internal/order/domain"
)

type StockRepository interface {
	// Decrement takes stock for every item of orderID in one transaction.
	// applied is false when the order was already processed.
	Decrement(ctx context.Context, orderID int64, items []orderdom.OrderItem) (adjustments []domain.Adjustment, applied bool, err error)
}
