// Package mistral wraps the Mistral REST API, which is OpenAI-compatible,
// for embeddings and chat completions. Provider failures are never retried
// here; they propagate to the caller as *ProviderError.
package mistral

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ProviderError is a failed or malformed provider response, validated at
// the gateway boundary so bad payloads never reach business logic.
type ProviderError struct {
	Op  string // "embed" or "chat"
	Err error
}

func (e *ProviderError) Error() string { return "mistral " + e.Op + ": " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// Config configures the Mistral client.
type Config struct {
	APIKey      string
	BaseURL     string
	ChatModel   string
	EmbedModel  string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client implements domain.Embedder and domain.Completer against one
// provider account.
type Client struct {
	api         *openai.Client
	chatModel   string
	embedModel  string
	temperature float32
	maxTokens   int
}

// New creates a client. The API key is required; everything else falls
// back to the Mistral defaults.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mistral: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "mistral-small-latest"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "mistral-embed"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		chatModel:   cfg.ChatModel,
		embedModel:  cfg.EmbedModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Embed returns one vector per input text, in input order, from a single
// batched provider call.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: texts,
	})
	if err != nil {
		return nil, &ProviderError{Op: "embed", Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &ProviderError{
			Op:  "embed",
			Err: fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}
	out := make([][]float32, len(texts))
	for i, d := range resp.Data {
		if len(d.Embedding) == 0 {
			return nil, &ProviderError{Op: "embed", Err: fmt.Errorf("empty embedding at position %d", i)}
		}
		if d.Index < 0 || d.Index >= len(out) {
			return nil, &ProviderError{Op: "embed", Err: fmt.Errorf("embedding index %d out of range [0, %d)", d.Index, len(out))}
		}
		if out[d.Index] != nil {
			return nil, &ProviderError{Op: "embed", Err: fmt.Errorf("duplicate embedding index %d", d.Index)}
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// EmbedOne embeds a single text.
func (c *Client) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, &ProviderError{Op: "embed", Err: fmt.Errorf("got %d embeddings, want 1", len(vectors))}
	}
	return vectors[0], nil
}

// Complete sends one chat completion request for the prompt and returns
// the answer text. Temperature and token cap come from the config.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", &ProviderError{Op: "chat", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Op: "chat", Err: errors.New("response has no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
