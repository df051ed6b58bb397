package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/storefront/internal/order/domain"
)

var (
	ErrStockUnavailable = errors.New("stock unavailable")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrEmptyOrder       = errors.New("order has no items")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrTotalMismatch    = errors.New("order total does not match catalogue prices")
	ErrOrderNotFound    = errors.New("order not found")
)

type Service struct {
	repo    OrderRepository
	catalog Catalog
}

func NewService(repo OrderRepository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// CreateOrder prices items from the catalogue, checks stock and the client's
// total, then saves the order with an OrderCreated outbox event.
func (s *Service) CreateOrder(ctx context.Context, userID int64, items []domain.OrderItem, total decimal.Decimal, headers map[string]string, traceparent string) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyOrder
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: product %d", ErrInvalidQuantity, it.ProductID)
		}
		ids = append(ids, it.ProductID)
	}

	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return domain.Order{}, err
	}

	want := decimal.Zero
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return domain.Order{}, fmt.Errorf("%w: %d", ErrUnknownProduct, it.ProductID)
		}
		if it.Quantity > p.Stock {
			return domain.Order{}, fmt.Errorf("%w: product %d has %d left", ErrStockUnavailable, p.ID, p.Stock)
		}
		want = want.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if !want.Equal(total) {
		return domain.Order{}, fmt.Errorf("%w: expected %s", ErrTotalMismatch, want.StringFixed(2))
	}

	o := domain.NewOrder(userID, items, want)
	newEvent := func(saved domain.Order) (string, []byte, error) {
		payload, err := json.Marshal(domain.OrderCreated{
			OrderID: saved.ID,
			UserID:  saved.UserID,
			Total:   saved.Total,
			Items:   saved.Items,
		})
		return domain.EventOrderCreated, payload, err
	}
	return s.repo.SaveWithOutbox(ctx, o, newEvent, headers, traceparent)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}
