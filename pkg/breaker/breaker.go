package breaker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dmehra2102/storefront/pkg/metrics"
)

// Breaker wraps gobreaker with state metrics and logging.
type Breaker struct {
	*gobreaker.CircuitBreaker
	name    string
	service string
}

func New(log *slog.Logger, name, service string) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		// 4xx answers are the caller's problem, not the dependency's.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrClient)
		},
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(service, cbName).Set(stateValue(to))
			log.Info("circuit breaker state changed", "circuit", cbName, "from", from.String(), "to", to.String())
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(service, name).Set(0)

	return &Breaker{CircuitBreaker: cb, name: name, service: service}
}

// ErrClient marks failures that should not count against the breaker.
var ErrClient = errors.New("client error")

func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.CircuitBreaker.Execute(fn)
	if err != nil && !errors.Is(err, ErrClient) {
		metrics.CircuitBreakerFailures.WithLabelValues(b.service, b.name).Inc()
	}
	return result, FormatError(b.name, err)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// FormatError names the circuit when the breaker itself refused the call.
func FormatError(circuitName string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) {
		return fmt.Errorf("circuit breaker %s is open (service unavailable): %w", circuitName, err)
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("circuit breaker %s: too many requests in half-open state: %w", circuitName, err)
	}
	return err
}
