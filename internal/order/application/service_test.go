package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	"github.com/dmehra2102/storefront/internal/order/domain"
)

type fakeRepo struct {
	nextID    int64
	orders    map[int64]domain.Order
	eventType string
	payload   []byte
}

func (r *fakeRepo) SaveWithOutbox(ctx context.Context, o domain.Order, newEvent func(domain.Order) (string, []byte, error), headers map[string]string, traceparent string) (domain.Order, error) {
	r.nextID++
	o.ID = r.nextID
	typ, payload, err := newEvent(o)
	if err != nil {
		return domain.Order{}, err
	}
	r.eventType, r.payload = typ, payload
	if r.orders == nil {
		r.orders = map[int64]domain.Order{}
	}
	r.orders[o.ID] = o
	return o, nil
}

func (r *fakeRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, nil
}

type fakeCatalog map[int64]catalog.Product

func (c fakeCatalog) Lookup(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	out := map[int64]catalog.Product{}
	for _, id := range ids {
		if p, ok := c[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		1: {ID: 1, Price: decimal.RequireFromString("10.00"), Stock: 5},
		2: {ID: 2, Price: decimal.RequireFromString("5.00"), Stock: 1},
	}
}

func TestCreateOrder(t *testing.T) {
	repo := &fakeRepo{nextID: 100}
	svc := NewService(repo, testCatalog())
	items := []domain.OrderItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}

	o, err := svc.CreateOrder(context.Background(), 1, items, decimal.RequireFromString("25"), nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(101), o.ID)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
	assert.Equal(t, "25.00", o.Total.StringFixed(2))

	assert.Equal(t, domain.EventOrderCreated, repo.eventType)
	var ev domain.OrderCreated
	require.NoError(t, json.Unmarshal(repo.payload, &ev))
	assert.Equal(t, int64(101), ev.OrderID)
	assert.Equal(t, items, ev.Items)

	got, err := svc.GetOrder(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestCreateOrderRejections(t *testing.T) {
	cases := []struct {
		name  string
		items []domain.OrderItem
		total string
		want  error
	}{
		{"empty", nil, "0", ErrEmptyOrder},
		{"zero quantity", []domain.OrderItem{{ProductID: 1, Quantity: 0}}, "0", ErrInvalidQuantity},
		{"unknown product", []domain.OrderItem{{ProductID: 9, Quantity: 1}}, "1", ErrUnknownProduct},
		{"over stock", []domain.OrderItem{{ProductID: 2, Quantity: 2}}, "10", ErrStockUnavailable},
		{"wrong total", []domain.OrderItem{{ProductID: 1, Quantity: 1}}, "9.99", ErrTotalMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := NewService(repo, testCatalog())
			_, err := svc.CreateOrder(context.Background(), 1, tc.items, decimal.RequireFromString(tc.total), nil, "")
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, repo.orders)
		})
	}
}
