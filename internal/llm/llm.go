// Package llm defines the provider-neutral interfaces the services use to
// talk to hosted language models, plus decorators for resilience and
// instrumentation. Concrete providers live in subpackages.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured is returned when a capability has no provider.
	ErrNotConfigured = errors.New("llm capability not configured")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("llm returned an empty response")
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("llm provider temporarily unavailable")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is a single chat completion.
type Request struct {
	// Operation names the caller for logs and metrics ("edit", "analyze").
	Operation   string
	System      string
	Messages    []Message
	JSON        bool
	MaxTokens   int
	Temperature *float64
}

// Response is the model's reply.
type Response struct {
	Text         string
	Provider     string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Completer produces chat completions.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Attachment is a binary input for vision extraction.
type Attachment struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Vision reads text out of images and scanned documents.
type Vision interface {
	Extract(ctx context.Context, prompt string, files []Attachment) (*Response, error)
}

// Speech converts between text and audio.
type Speech interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// StatusError is a non-2xx reply from a provider.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.Status, e.Body)
}

// UserPrompt builds a single-message request.
func UserPrompt(operation, system, prompt string) Request {
	return Request{
		Operation: operation,
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		JSON:      true,
	}
}

// CleanJSON strips markdown code fences and any prose around the outermost
// JSON object in a model reply.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return text
}

// DecodeJSON cleans a model reply and unmarshals it into v.
func DecodeJSON(text string, v any) error {
	cleaned := CleanJSON(text)
	if cleaned == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("parsing model JSON: %w (raw: %s)", err, truncate(cleaned, 200))
	}
	return nil
}

// CompleteJSON runs req and decodes the reply into v.
func CompleteJSON(ctx context.Context, c Completer, req Request, v any) (*Response, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	req.JSON = true
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := DecodeJSON(resp.Text, v); err != nil {
		return resp, err
	}
	return resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
