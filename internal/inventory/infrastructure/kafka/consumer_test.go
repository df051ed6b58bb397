package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront/internal/inventory/application"
	"github.com/dmehra2102/storefront/internal/inventory/domain"
	orderdom "github.com/dmehra2102/storefront/internal/order/domain"
	"github.com/dmehra2102/storefront/pkg/idempotency"
	"github.com/dmehra2102/storefront/pkg/logging"
	"github.com/dmehra2102/storefront/pkg/outbox"
)

type countingRepo struct {
	calls int
}

func (r *countingRepo) Decrement(ctx context.Context, orderID int64, items []orderdom.OrderItem) ([]domain.Adjustment, bool, error) {
	r.calls++
	out := make([]domain.Adjustment, 0, len(items))
	for _, it := range items {
		out = append(out, domain.NewAdjustment(it.ProductID, it.Quantity, 10))
	}
	return out, true, nil
}

type sliceReader struct {
	msgs      []kafka.Message
	committed []int64
}

func (r *sliceReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *sliceReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *sliceReader) Close() error { return nil }

func orderMessage(t *testing.T, offset int64, eventType string) kafka.Message {
	t.Helper()
	v, err := json.Marshal(orderdom.OrderCreated{OrderID: 1, Items: []orderdom.OrderItem{{ProductID: 1, Quantity: 2}}})
	require.NoError(t, err)
	return kafka.Message{
		Topic:   "order.events",
		Offset:  offset,
		Key:     []byte("1"),
		Value:   v,
		Headers: []kafka.Header{{Key: outbox.EventTypeHeader, Value: []byte(eventType)}},
	}
}

func TestConsumerAppliesEachOffsetOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &countingRepo{}
	reader := &sliceReader{msgs: []kafka.Message{
		orderMessage(t, 1, orderdom.EventOrderCreated),
		orderMessage(t, 1, orderdom.EventOrderCreated),
		orderMessage(t, 2, "OrderCancelled"),
	}}
	c := NewConsumer(logging.Discard(), reader, application.NewService(logging.Discard(), repo), idempotency.NewStore(rdb, time.Minute))

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, []int64{1, 1, 2}, reader.committed)
}
