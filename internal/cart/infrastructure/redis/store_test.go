package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront/internal/cart/application"
	"github.com/dmehra2102/storefront/internal/cart/domain"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	"github.com/dmehra2102/storefront/pkg/logging"
)

func setup(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewStore(rdb, time.Hour)
}

func TestLoadMissingCart(t *testing.T) {
	_, s := setup(t)
	_, ok, err := s.ForSession("nobody").Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	mr, s := setup(t)
	ctx := context.Background()
	st := domain.State{Items: []domain.LineItem{
		{ID: 1, Name: "Premium Headphones", Price: decimal.RequireFromString("199.99"), Quantity: 2, Stock: 15},
		{ID: 5, Name: "Water Bottle", Price: decimal.RequireFromString("24.99"), Quantity: 1, Stock: 50},
	}}

	require.NoError(t, s.ForSession("abc").Save(ctx, st))
	assert.True(t, mr.Exists("cart:abc"))
	assert.Equal(t, time.Hour, mr.TTL("cart:abc"))

	got, ok, err := s.ForSession("abc").Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(5), got.Items[1].ID)
	assert.True(t, got.TotalPrice().Equal(st.TotalPrice()))
}

func TestLoadCorruptCart(t *testing.T) {
	mr, s := setup(t)
	require.NoError(t, mr.Set("cart:bad", "{not json"))

	_, _, err := s.ForSession("bad").Load(context.Background())
	assert.Error(t, err)
}

func TestEngineSurvivesReload(t *testing.T) {
	_, s := setup(t)
	ctx := context.Background()
	p := catalog.Product{ID: 2, Name: "Running Shoes", Price: decimal.RequireFromString("89.99"), Stock: 25}

	first := application.NewEngine(ctx, logging.Discard(), s.ForSession("shopper"))
	first.AddItem(ctx, p, 3)

	second := application.NewEngine(ctx, logging.Discard(), s.ForSession("shopper"))
	assert.Equal(t, 3, second.TotalItems())
	assert.Equal(t, "269.97", domain.FormatPrice(second.TotalPrice()))

	second.ClearCart(ctx)
	third := application.NewEngine(ctx, logging.Discard(), s.ForSession("shopper"))
	assert.Zero(t, third.TotalItems())
}
