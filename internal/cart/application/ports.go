package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

// Store is the durable home of one shopper's cart. Load reports false when
// nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (domain.State, bool, error)
	Save(ctx context.Context, s domain.State) error
}
