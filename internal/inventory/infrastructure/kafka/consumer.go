package kafka

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront/internal/inventory/application"
	orderdom "github.com/dmehra2102/storefront/internal/order/domain"
	"github.com/dmehra2102/storefront/pkg/idempotency"
	"github.com/dmehra2102/storefront/pkg/outbox"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	log    *slog.Logger
	reader Reader
	svc    *application.Service
	idem   *idempotency.Store
	tracer trace.Tracer
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader Reader, svc *application.Service, idem *idempotency.Store) *Consumer {
	return &Consumer{
		log:    log,
		reader: reader,
		svc:    svc,
		idem:   idem,
		tracer: otel.Tracer("inventory-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		c.Handle(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

// Handle processes one message. Events other than OrderCreated are ignored.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) {
	if tracing.HeaderValue(msg.Headers, outbox.EventTypeHeader) != orderdom.EventOrderCreated {
		return
	}

	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, idemErr := c.idem.Seen(ctx, key)
	if idemErr != nil {
		// the stock_adjustments table still guards against double application
		c.log.Error("idempotency check failed", "key", key, "err", idemErr)
	} else if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeOrderCreated")
	defer span.End()

	adjustments, err := c.svc.ApplyOrderCreated(msgCtx, msg.Value)
	if err != nil {
		c.log.Error("stock adjustment failed", "key", string(msg.Key), "err", err)
		if idemErr == nil {
			_ = c.idem.Forget(ctx, key)
		}
		return
	}
	c.log.Info("stock adjusted", "order_id", string(msg.Key), "products", len(adjustments))
}
