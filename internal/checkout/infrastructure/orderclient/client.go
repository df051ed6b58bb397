package orderclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/dmehra2102/storefront/internal/checkout/domain"
	"github.com/dmehra2102/storefront/pkg/breaker"
	"github.com/dmehra2102/storefront/pkg/idempotency"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

var ErrRejected = errors.New("order rejected")

// Client calls the order service's POST /orders. Each call carries a fresh
// Idempotency-Key, so a manual resubmit is a new attempt.
type Client struct {
	log     *slog.Logger
	http    *resty.Client
	breaker *breaker.Breaker
}

func New(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log: log,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0),
		breaker: breaker.New(log, "orders", "storefront"),
	}
}

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderConfirmation, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var conf domain.OrderConfirmation
		r := c.http.R().
			SetContext(ctx).
			SetHeader(idempotency.Header, key).
			SetBody(req).
			SetResult(&conf)
		if tp := tracing.Traceparent(ctx); tp != "" {
			r.SetHeader(tracing.TraceparentHeader, tp)
		}
		resp, err := r.Post("/orders")
		if err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, fmt.Errorf("create order: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: %s (%w)", ErrRejected, strings.TrimSpace(resp.String()), breaker.ErrClient)
		}
		return conf, nil
	})
	if err != nil {
		c.log.Warn("create order failed", "idempotency_key", key, "err", err)
		return domain.OrderConfirmation{}, err
	}
	return out.(domain.OrderConfirmation), nil
}
