package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"github.com/yourusername/careerops-api/internal/metrics"
)

// bounded applies d to ctx. A non-positive d leaves ctx unbounded.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// observe records a vision or speech call the way Instrumented records a
// completion.
func observe(provider, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.ObserveLLM(provider, op, elapsed, err)
	if err != nil {
		log.Error().Err(err).
			Str("provider", provider).
			Str("operation", op).
			Dur("elapsed", elapsed).
			Msg("LLM call failed")
		return
	}
	log.Debug().
		Str("provider", provider).
		Str("operation", op).
		Dur("elapsed", elapsed).
		Msg("LLM call")
}

// GuardedVision bounds, records and circuit-breaks document extraction.
type GuardedVision struct {
	provider string
	next     Vision
	timeout  time.Duration
	cb       *gobreaker.CircuitBreaker[*Response]
}

// ChainVision wraps v like Chain wraps a Completer. A nil v stays nil so
// callers can keep checking for a missing capability.
func ChainVision(provider string, v Vision, timeout time.Duration, cfg BreakerConfig) Vision {
	if v == nil {
		return nil
	}
	return &GuardedVision{
		provider: provider,
		next:     v,
		timeout:  timeout,
		cb:       gobreaker.NewCircuitBreaker[*Response](breakerSettings(provider+"-vision", cfg)),
	}
}

func (g *GuardedVision) Extract(ctx context.Context, prompt string, files []Attachment) (*Response, error) {
	return execute(g.cb, func() (*Response, error) {
		ctx, cancel := bounded(ctx, g.timeout)
		defer cancel()

		start := time.Now()
		resp, err := g.next.Extract(ctx, prompt, files)
		observe(g.provider, "vision_extract", start, err)
		if err == nil {
			metrics.AddTokens(g.provider, resp.InputTokens, resp.OutputTokens)
		}
		return resp, err
	})
}

// GuardedSpeech bounds, records and circuit-breaks speech calls. Synthesis
// and transcription trip independently.
type GuardedSpeech struct {
	provider   string
	next       Speech
	timeout    time.Duration
	synthesize *gobreaker.CircuitBreaker[[]byte]
	transcribe *gobreaker.CircuitBreaker[string]
}

// ChainSpeech wraps s like Chain wraps a Completer. A nil s stays nil.
func ChainSpeech(provider string, s Speech, timeout time.Duration, cfg BreakerConfig) Speech {
	if s == nil {
		return nil
	}
	return &GuardedSpeech{
		provider:   provider,
		next:       s,
		timeout:    timeout,
		synthesize: gobreaker.NewCircuitBreaker[[]byte](breakerSettings(provider+"-tts", cfg)),
		transcribe: gobreaker.NewCircuitBreaker[string](breakerSettings(provider+"-stt", cfg)),
	}
}

func (g *GuardedSpeech) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	return execute(g.synthesize, func() ([]byte, error) {
		ctx, cancel := bounded(ctx, g.timeout)
		defer cancel()

		start := time.Now()
		audio, err := g.next.Synthesize(ctx, text, voice)
		observe(g.provider, "speech_synthesize", start, err)
		return audio, err
	})
}

func (g *GuardedSpeech) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return execute(g.transcribe, func() (string, error) {
		ctx, cancel := bounded(ctx, g.timeout)
		defer cancel()

		start := time.Now()
		text, err := g.next.Transcribe(ctx, audio, filename)
		observe(g.provider, "speech_transcribe", start, err)
		return text, err
	})
}
