// Package gemini adapts the Google Gemini API to llm.Completer.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yourusername/careerops-api/internal/llm"
)

const (
	providerName     = "gemini"
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 2000
)

type Client struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("calling Gemini API: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, llm.ErrEmptyResponse
	}

	resp := &llm.Response{
		Text:     text,
		Provider: providerName,
		Model:    c.model,
	}
	if u := result.UsageMetadata; u != nil {
		resp.InputTokens = int64(u.PromptTokenCount)
		resp.OutputTokens = int64(u.CandidatesTokenCount)
	}
	return resp, nil
}

var _ llm.Completer = (*Client)(nil)
