package application

import (
	"context"

	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
)

type ProductSource interface {
	FetchProducts(ctx context.Context) ([]catalog.Product, error)
	FetchProductByID(ctx context.Context, id int64) (catalog.Product, error)
}

// CartStores hands out the durable store for one session's cart.
type CartStores interface {
	ForSession(session string) cartapp.Store
}
