package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront/pkg/logging"
)

type fakeStore struct {
	batch  []Event
	sent   []int64
	failed map[int64]string
}

func (s *fakeStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	b := s.batch
	s.batch = nil
	return b, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, ids []int64) error {
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	if s.failed == nil {
		s.failed = map[int64]string{}
	}
	s.failed[id] = errMsg
	return nil
}

type fakeProducer struct {
	msgs   []kafka.Message
	failOn string
}

func (p *fakeProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if string(m.Key) == p.failOn {
			return errors.New("broker unavailable")
		}
		p.msgs = append(p.msgs, m)
	}
	return nil
}

func TestDispatcherMessage(t *testing.T) {
	d := NewDispatcher(logging.Discard(), &fakeProducer{}, "order.events")
	msg := d.Message(Event{
		ID:          7,
		AggregateID: "12",
		Type:        "OrderCreated",
		Payload:     []byte(`{"order_id":12}`),
		Headers:     map[string]string{"source": "order-service"},
		Traceparent: "00-abc-def-01",
	})

	assert.Equal(t, "order.events", msg.Topic)
	assert.Equal(t, []byte("12"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "source", msg.Headers[0].Key)
	assert.Equal(t, EventTypeHeader, msg.Headers[1].Key)
	assert.Equal(t, "OrderCreated", string(msg.Headers[1].Value))
	assert.Equal(t, "traceparent", msg.Headers[2].Key)
}

func TestRelayFlush(t *testing.T) {
	store := &fakeStore{batch: []Event{
		{ID: 1, AggregateID: "a", Type: "OrderCreated"},
		{ID: 2, AggregateID: "b", Type: "OrderCreated"},
		{ID: 3, AggregateID: "c", Type: "OrderCreated"},
	}}
	prod := &fakeProducer{failOn: "b"}
	r := NewRelay(logging.Discard(), store, NewDispatcher(logging.Discard(), prod, "order.events"), "test-relay")

	n, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 3}, store.sent)
	assert.Contains(t, store.failed[2], "broker unavailable")
	assert.Len(t, prod.msgs, 2)

	n, err = r.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewEventDefaults(t *testing.T) {
	ev := NewEvent("order", "7", "OrderCreated", []byte(`{}`), nil, "")
	assert.Equal(t, StatusPending, ev.Status)
	assert.NotNil(t, ev.Headers)
	assert.Equal(t, "7", ev.AggregateID)
}
