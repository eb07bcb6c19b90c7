// Package openai adapts the OpenAI API to the llm interfaces. It is the only
// provider that also serves vision extraction and speech.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"

	"github.com/yourusername/careerops-api/internal/llm"
)

const (
	providerName       = "openai"
	defaultModel       = "gpt-4o-mini"
	defaultVisionModel = "gpt-4o"
	defaultMaxTokens   = 2000
	visionMaxTokens    = 4000
)

// Client implements llm.Completer, llm.Vision and llm.Speech.
type Client struct {
	client      openai.Client
	model       string
	visionModel string
}

// New builds a client. An empty model selects the default chat model.
func New(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		visionModel: defaultVisionModel,
	}, nil
}

// Complete runs a chat completion.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == llm.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}

	params := openai.ChatCompletionNewParams{
		Messages:  messages,
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(int64(maxTokens(req.MaxTokens, defaultMaxTokens))),
	}
	if req.JSON {
		params.ResponseFormat = jsonFormat()
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	return c.run(ctx, params)
}

// Extract reads the text out of images and PDFs. Images go in as data URLs,
// PDFs as inline file parts.
func (c *Client) Extract(ctx context.Context, prompt string, files []llm.Attachment) (*llm.Response, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to extract")
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		{OfText: &openai.ChatCompletionContentPartTextParam{Text: prompt}},
	}
	for _, f := range files {
		ctype := f.MIMEType
		if ctype == "" {
			ctype = mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Filename)))
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", ctype, base64.StdEncoding.EncodeToString(f.Data))

		if strings.HasPrefix(ctype, "image/") {
			parts = append(parts, openai.ChatCompletionContentPartUnionParam{
				OfImageURL: &openai.ChatCompletionContentPartImageParam{
					ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
						URL:    dataURL,
						Detail: "high",
					},
				},
			})
			continue
		}
		parts = append(parts, openai.ChatCompletionContentPartUnionParam{
			OfFile: &openai.ChatCompletionContentPartFileParam{
				File: openai.ChatCompletionContentPartFileFileParam{
					FileData: openai.String(dataURL),
					Filename: openai.String(f.Filename),
				},
			},
		})
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: parts,
				},
			},
		}},
		Model:          openai.ChatModel(c.visionModel),
		ResponseFormat: jsonFormat(),
		Temperature:    openai.Float(0.1),
		MaxTokens:      openai.Int(visionMaxTokens),
	}
	return c.run(ctx, params)
}

// Synthesize renders text as MP3 audio.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	resp, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI speech API: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading speech audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	return audio, nil
}

// Transcribe converts recorded audio to text with Whisper.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "answer.webm"
	}
	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if ctype == "" {
		ctype = "application/octet-stream"
	}

	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), filename, ctype),
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", fmt.Errorf("calling OpenAI transcription API: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (c *Client) run(ctx context.Context, params openai.ChatCompletionNewParams) (*llm.Response, error) {
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return nil, llm.ErrEmptyResponse
	}
	return &llm.Response{
		Text:         text,
		Provider:     providerName,
		Model:        string(params.Model),
		InputTokens:  completion.Usage.PromptTokens,
		OutputTokens: completion.Usage.CompletionTokens,
	}, nil
}

func jsonFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &openai.ResponseFormatJSONObjectParam{
			Type: constant.JSONObject("json_object"),
		},
	}
}

func maxTokens(requested, fallback int) int {
	if requested > 0 {
		return requested
	}
	return fallback
}

var (
	_ llm.Completer = (*Client)(nil)
	_ llm.Vision    = (*Client)(nil)
	_ llm.Speech    = (*Client)(nil)
)
