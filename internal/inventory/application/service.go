package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/storefront/internal/inventory/domain"
	orderdom "github.com/dmehra2102/storefront/internal/order/domain"
	"github.com/dmehra2102/storefront/pkg/metrics"
)

var ErrMalformedEvent = errors.New("malformed order event")

type Service struct {
	log  *slog.Logger
	repo StockRepository
}

func NewService(log *slog.Logger, repo StockRepository) *Service {
	return &Service{log: log, repo: repo}
}

// ApplyOrderCreated decodes an OrderCreated payload and takes its stock.
func (s *Service) ApplyOrderCreated(ctx context.Context, payload []byte) ([]domain.Adjustment, error) {
	var ev orderdom.OrderCreated
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if ev.OrderID <= 0 || len(ev.Items) == 0 {
		return nil, fmt.Errorf("%w: order %d has no items", ErrMalformedEvent, ev.OrderID)
	}
	return s.Apply(ctx, ev)
}

func (s *Service) Apply(ctx context.Context, ev orderdom.OrderCreated) ([]domain.Adjustment, error) {
	adjustments, applied, err := s.repo.Decrement(ctx, ev.OrderID, ev.Items)
	if err != nil {
		return nil, fmt.Errorf("decrement stock for order %d: %w", ev.OrderID, err)
	}
	if !applied {
		s.log.Info("order stock already applied", "order_id", ev.OrderID)
		return nil, nil
	}
	for _, a := range adjustments {
		metrics.StockAdjustments.WithLabelValues(string(a.Result)).Inc()
		if a.Result == domain.Short {
			s.log.Warn("stock shortfall", "order_id", ev.OrderID, "product_id", a.ProductID, "requested", a.Requested, "taken", a.Taken)
		}
	}
	return adjustments, nil
}
