package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/storefront/internal/cart/domain"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	"github.com/dmehra2102/storefront/pkg/metrics"
)

// Engine owns one cart. Every mutation runs under a single lock and is
// persisted before the lock is released, so saves land in mutation order.
//
// The engine never returns errors: bad input becomes a no-op or a clamped
// quantity, and storage failures are logged.
type Engine struct {
	mu    sync.Mutex
	log   *slog.Logger
	store Store
	state domain.State
}

// NewEngine restores the cart from store when one is given. A nil store
// keeps the cart in memory only.
func NewEngine(ctx context.Context, log *slog.Logger, store Store) *Engine {
	e := &Engine{log: log, store: store}
	if store == nil {
		return e
	}
	st, ok, err := store.Load(ctx)
	if err != nil {
		log.Error("cart load failed, starting empty", "err", err)
		return e
	}
	if ok {
		e.state = st.Normalize()
	}
	return e
}

// Items returns a snapshot in insertion order.
func (e *Engine) Items() []domain.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone().Items
}

func (e *Engine) Snapshot() domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// AddItem merges quantity units of p into the cart, capped at p.Stock. The
// line's stock is refreshed from p.
func (e *Engine) AddItem(ctx context.Context, p catalog.Product, quantity int) domain.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.state.Index(p.ID)
	existing := 0
	if i >= 0 {
		existing = e.state.Items[i].Quantity
	}
	if quantity < 1 || p.Stock <= 0 {
		return domain.Outcome{ID: p.ID, Quantity: existing}
	}

	clamped := quantity > p.Stock-existing
	applied := p.Stock
	if !clamped {
		applied = existing + quantity
	}

	if i >= 0 {
		e.state.Items[i].Quantity = applied
		e.state.Items[i].Stock = p.Stock
	} else {
		e.state.Items = append(e.state.Items, domain.NewLineItem(p, applied))
	}
	e.commit(ctx, "add", clamped)
	return domain.Outcome{ID: p.ID, Quantity: applied, Clamped: clamped}
}

// UpdateQuantity sets a line's quantity, capped at the line's stock. Zero or
// less removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, id int64, quantity int) domain.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.state.Index(id)
	if i < 0 {
		return domain.Outcome{ID: id}
	}
	if quantity <= 0 {
		e.remove(ctx, i)
		return domain.Outcome{ID: id}
	}

	li := &e.state.Items[i]
	applied := min(quantity, li.Stock)
	li.Quantity = applied
	clamped := applied < quantity
	e.commit(ctx, "update", clamped)
	return domain.Outcome{ID: id, Quantity: applied, Clamped: clamped}
}

func (e *Engine) RemoveItem(ctx context.Context, id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.state.Index(id); i >= 0 {
		e.remove(ctx, i)
	}
}

func (e *Engine) ClearCart(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.IsEmpty() {
		return
	}
	e.state = domain.State{}
	e.commit(ctx, "clear", false)
}

// Clear lets the engine stand in wherever a cart only needs emptying.
func (e *Engine) Clear(ctx context.Context) { e.ClearCart(ctx) }

func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.TotalItems()
}

func (e *Engine) TotalPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.TotalPrice()
}

func (e *Engine) remove(ctx context.Context, i int) {
	e.state.Items = append(e.state.Items[:i], e.state.Items[i+1:]...)
	e.commit(ctx, "remove", false)
}

// commit must be called with mu held.
func (e *Engine) commit(ctx context.Context, op string, clamped bool) {
	metrics.CartMutations.WithLabelValues(op).Inc()
	if clamped {
		metrics.CartClamps.Inc()
	}
	if e.store == nil {
		return
	}
	if err := e.store.Save(ctx, e.state.Clone()); err != nil {
		metrics.CartPersistFailures.Inc()
		e.log.Error("cart save failed", "op", op, "err", err)
	}
}
