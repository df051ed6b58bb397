package application

import (
	"context"

	cart "github.com/dmehra2102/storefront/internal/cart/domain"
	"github.com/dmehra2102/storefront/internal/checkout/domain"
)

// Cart is the slice of the cart engine checkout depends on. Snapshot must
// return items and total from the same instant.
type Cart interface {
	Snapshot() cart.State
	Clear(ctx context.Context)
}

// OrderService creates orders. An error means the outcome is unknown to
// the caller: the order may or may not exist server side.
type OrderService interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderConfirmation, error)
}
