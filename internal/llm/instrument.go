package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/metrics"
)

// Instrumented logs and records metrics for every call to the wrapped
// Completer.
type Instrumented struct {
	provider string
	next     Completer
}

func NewInstrumented(provider string, next Completer) *Instrumented {
	return &Instrumented{provider: provider, next: next}
}

func (i *Instrumented) Complete(ctx context.Context, req Request) (*Response, error) {
	op := req.Operation
	if op == "" {
		op = "unknown"
	}

	start := time.Now()
	resp, err := i.next.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.ObserveLLM(i.provider, op, elapsed, err)

	if err != nil {
		log.Error().Err(err).
			Str("provider", i.provider).
			Str("operation", op).
			Dur("elapsed", elapsed).
			Msg("LLM call failed")
		return nil, err
	}

	metrics.AddTokens(i.provider, resp.InputTokens, resp.OutputTokens)
	log.Debug().
		Str("provider", i.provider).
		Str("model", resp.Model).
		Str("operation", op).
		Int64("input_tokens", resp.InputTokens).
		Int64("output_tokens", resp.OutputTokens).
		Dur("elapsed", elapsed).
		Msg("LLM call")
	return resp, nil
}

// Timeout bounds every call to the wrapped Completer.
type Timeout struct {
	next Completer
	d    time.Duration
}

// WithTimeout wraps next. A non-positive d returns next unchanged.
func WithTimeout(next Completer, d time.Duration) Completer {
	if d <= 0 {
		return next
	}
	return &Timeout{next: next, d: d}
}

func (t *Timeout) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Complete(ctx, req)
}

// Chain wraps a provider with a per-call timeout, instrumentation and a
// circuit breaker.
func Chain(provider string, c Completer, timeout time.Duration, cfg BreakerConfig) Completer {
	return NewBreaker(provider, NewInstrumented(provider, WithTimeout(c, timeout)), cfg)
}
