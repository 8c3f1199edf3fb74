package reasoning

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/JaimeStill/crediscope/internal/providers"
)

// Completer sends a system and user message to a language model and returns
// the raw text of the first choice.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAI is a Completer for any OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAI creates a Completer from cfg.
func NewOpenAI(cfg *Config, httpClient *http.Client) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	if httpClient != nil {
		oc.HTTPClient = httpClient
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", errors.Join(providers.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}
