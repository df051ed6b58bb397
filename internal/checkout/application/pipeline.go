package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmehra2102/storefront/internal/checkout/domain"
	"github.com/dmehra2102/storefront/pkg/metrics"
)

var (
	ErrUnknownField       = errors.New("unknown checkout field")
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")
	ErrFormLocked         = errors.New("checkout form is locked while submitting")
	ErrAlreadySubmitted   = errors.New("order already placed; start a new checkout")
	ErrEmptyCart          = errors.New("EMPTY_CART: cart is empty")
	ErrSubmissionFailed   = errors.New("order submission failed")
)

// Pipeline drives one checkout: form state, validation and a single
// in-flight order submission. Once an order succeeds the pipeline is done;
// callers start a new one for the next checkout.
type Pipeline struct {
	mu         sync.Mutex
	log        *slog.Logger
	cart       Cart
	orders     OrderService
	userID     int64
	fields     map[domain.Field]string
	errors     domain.FieldErrors
	submission domain.Submission

	// attempt is the last request sent; a retry of the same payload reuses
	// its idempotency key so the order service can spot a duplicate.
	attempt domain.OrderRequest
}

// NewPipeline wires a checkout for userID, which stands in for an
// authenticated identity.
func NewPipeline(log *slog.Logger, cart Cart, orders OrderService, userID int64) *Pipeline {
	fields := make(map[domain.Field]string, len(domain.Fields))
	for _, f := range domain.Fields {
		fields[f] = ""
	}
	return &Pipeline{
		log:        log,
		cart:       cart,
		orders:     orders,
		userID:     userID,
		fields:     fields,
		errors:     domain.FieldErrors{},
		submission: domain.Submission{Status: domain.StatusIdle},
	}
}

func (p *Pipeline) Fields() map[domain.Field]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[domain.Field]string, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

func (p *Pipeline) Errors() domain.FieldErrors {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(domain.FieldErrors, len(p.errors))
	for k, v := range p.errors {
		out[k] = v
	}
	return out
}

func (p *Pipeline) Status() domain.Submission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submission
}

// SetField stores a value and clears that field's error. Editing after a
// failed submission returns the pipeline to idle.
func (p *Pipeline) SetField(name domain.Field, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.fields[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	switch p.submission.Status {
	case domain.StatusSubmitting:
		return ErrFormLocked
	case domain.StatusSucceeded:
		return ErrAlreadySubmitted
	case domain.StatusFailed:
		p.submission = domain.Submission{Status: domain.StatusIdle}
	}
	p.fields[name] = value
	delete(p.errors, name)
	return nil
}

// Submit validates the form and, if it is clean and the cart has items,
// sends one order. It blocks until the order service answers.
//
// Errors: ErrSubmissionInFlight while another Submit runs, *ValidationError
// for bad fields, ErrEmptyCart, and ErrSubmissionFailed wrapping the order
// service error. Only the last one attempted a network call.
func (p *Pipeline) Submit(ctx context.Context) (domain.Submission, error) {
	req, err := p.begin()
	if err != nil {
		return p.Status(), err
	}

	p.log.Info("submitting order", "items", len(req.Items), "total", req.Total.StringFixed(2), "user_id", req.UserID)
	conf, err := p.orders.CreateOrder(ctx, req)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.submission = domain.Submission{Status: domain.StatusFailed, Reason: err.Error()}
		metrics.CheckoutSubmissions.WithLabelValues("failed").Inc()
		p.log.Error("order submission failed", "err", err)
		return p.submission, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	p.cart.Clear(ctx)
	p.submission = domain.Submission{Status: domain.StatusSucceeded, OrderID: conf.ID}
	metrics.CheckoutSubmissions.WithLabelValues("succeeded").Inc()
	p.log.Info("order placed", "order_id", conf.ID)
	return p.submission, nil
}

// begin runs the admission gate, validation and payload build, and moves the
// pipeline to submitting.
func (p *Pipeline) begin() (domain.OrderRequest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.submission.Status {
	case domain.StatusSubmitting:
		metrics.CheckoutSubmissions.WithLabelValues("in_flight").Inc()
		return domain.OrderRequest{}, ErrSubmissionInFlight
	case domain.StatusSucceeded:
		return domain.OrderRequest{}, ErrAlreadySubmitted
	}
	p.submission = domain.Submission{Status: domain.StatusIdle}

	p.errors = Validate(p.fields)
	if len(p.errors) > 0 {
		metrics.CheckoutSubmissions.WithLabelValues("validation_failed").Inc()
		errs := make(domain.FieldErrors, len(p.errors))
		for k, v := range p.errors {
			errs[k] = v
		}
		return domain.OrderRequest{}, &domain.ValidationError{Fields: errs}
	}

	snap := p.cart.Snapshot()
	if snap.IsEmpty() {
		metrics.CheckoutSubmissions.WithLabelValues("empty_cart").Inc()
		return domain.OrderRequest{}, ErrEmptyCart
	}

	req := domain.OrderRequest{
		Items:  make([]domain.OrderLine, 0, len(snap.Items)),
		Total:  snap.TotalPrice(),
		UserID: p.userID,
	}
	for _, li := range snap.Items {
		req.Items = append(req.Items, domain.OrderLine{ProductID: li.ID, Quantity: li.Quantity})
	}

	if p.attempt.IdempotencyKey == "" || !req.SamePayload(p.attempt) {
		req.IdempotencyKey = uuid.NewString()
	} else {
		req.IdempotencyKey = p.attempt.IdempotencyKey
	}
	p.attempt = req

	p.submission = domain.Submission{Status: domain.StatusSubmitting}
	return req, nil
}
