package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	checkoutapp "github.com/dmehra2102/storefront/internal/checkout/application"
	checkout "github.com/dmehra2102/storefront/internal/checkout/domain"
)

// Session is one shopper's cart and their current checkout.
type Session struct {
	ID   string
	Cart *cartapp.Engine

	lastSeen time.Time // guarded by Registry.mu

	mu       sync.Mutex
	checkout *checkoutapp.Pipeline
	newCheck func() *checkoutapp.Pipeline
}

// Checkout returns the current pipeline, including a finished one so its
// order id stays visible.
func (s *Session) Checkout() *checkoutapp.Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout
}

// ActiveCheckout returns a pipeline that can still take input, replacing a
// succeeded one with a fresh checkout.
func (s *Session) ActiveCheckout() *checkoutapp.Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout.Status().Status == checkout.StatusSucceeded {
		s.checkout = s.newCheck()
	}
	return s.checkout
}

// Registry keeps live sessions in memory. Cart contents survive restarts
// and eviction through stores; checkout forms do not.
type Registry struct {
	log    *slog.Logger
	stores CartStores
	orders checkoutapp.OrderService
	userID int64
	idle   time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

type Option func(*Registry)

// WithIdleTimeout evicts sessions not used for d. Zero keeps them forever.
func WithIdleTimeout(d time.Duration) Option { return func(r *Registry) { r.idle = d } }

// NewRegistry builds sessions whose carts persist through stores (nil keeps
// carts in memory) and whose checkouts submit to orders as userID.
func NewRegistry(log *slog.Logger, stores CartStores, orders checkoutapp.OrderService, userID int64, opts ...Option) *Registry {
	r := &Registry{
		log:      log,
		stores:   stores,
		orders:   orders,
		userID:   userID,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session for id, restoring its cart on first use.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s
	}

	var store cartapp.Store
	if r.stores != nil {
		store = r.stores.ForSession(id)
	}
	log := r.log.With("session", id)
	engine := cartapp.NewEngine(ctx, log, store)
	s := &Session{ID: id, Cart: engine, lastSeen: r.now()}
	s.newCheck = func() *checkoutapp.Pipeline {
		return checkoutapp.NewPipeline(log, engine, r.orders, r.userID)
	}
	s.checkout = s.newCheck()
	r.sessions[id] = s
	return s
}

// Sweep drops sessions idle past the timeout and returns how many went.
// A session with a submission in flight is kept.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idle)
	n := 0
	for id, s := range r.sessions {
		if s.lastSeen.After(cutoff) || s.Checkout().Status().Status == checkout.StatusSubmitting {
			continue
		}
		delete(r.sessions, id)
		n++
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				r.log.Info("idle sessions evicted", "count", n)
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
