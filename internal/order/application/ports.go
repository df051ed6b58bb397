package application

import (
	"context"

	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	"github.com/dmehra2102/storefront/internal/order/domain"
)

type OrderRepository interface {
	// SaveWithOutbox stores o and the event built by newEvent in one
	// transaction. newEvent receives the order with its assigned id.
	SaveWithOutbox(ctx context.Context, o domain.Order, newEvent func(domain.Order) (string, []byte, error), headers map[string]string, traceparent string) (domain.Order, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
}

type Catalog interface {
	Lookup(ctx context.Context, ids []int64) (map[int64]catalog.Product, error)
}
