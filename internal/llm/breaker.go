package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"github.com/yourusername/careerops-api/internal/metrics"
)

// BreakerConfig tunes the circuit breaker around a provider.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerConfig trips after 60% of at least 5 calls fail and lets
// a trial call through after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.6,
	}
}

// Breaker guards a Completer with a circuit breaker.
type Breaker struct {
	next Completer
	cb   *gobreaker.CircuitBreaker[*Response]
}

// NewBreaker wraps next. Caller cancellations do not count as failures.
func NewBreaker(name string, next Completer, cfg BreakerConfig) *Breaker {
	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*Response](breakerSettings(name, cfg)),
	}
}

func breakerSettings(name string, cfg BreakerConfig) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        fmt.Sprintf("llm-%s", name),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("LLM circuit breaker state changed")
			metrics.SetBreakerState(name, int(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
}

// execute runs fn through cb and reports a rejected call as ErrCircuitOpen.
func execute[T any](cb *gobreaker.CircuitBreaker[T], fn func() (T, error)) (T, error) {
	out, err := cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrCircuitOpen, cb.Name())
	}
	return out, err
}

// Complete runs the wrapped call unless the breaker is open.
func (b *Breaker) Complete(ctx context.Context, req Request) (*Response, error) {
	return execute(b.cb, func() (*Response, error) {
		return b.next.Complete(ctx, req)
	})
}

// State reports the breaker state name ("closed", "open", "half-open").
func (b *Breaker) State() string {
	return b.cb.State().String()
}
