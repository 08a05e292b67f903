// Package generator wraps the hosted language model behind a small client.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// ErrUpstreamGeneration is returned when the model call fails or yields
// unusable output. It is a hard failure: the caller decides whether to
// retry, nothing is retried here.
var ErrUpstreamGeneration = errors.New("upstream generation failed")

// Config holds settings for the generation client.
type Config struct {
	// BaseURL is the base URL of the OpenAI-compatible API.
	BaseURL string

	// Model is the chat completion model.
	Model string

	// APIKey authenticates the endpoint.
	APIKey string

	// Temperature controls sampling randomness.
	Temperature float64

	// RatePerMinute caps calls to the upstream API. Zero disables the
	// limiter.
	RatePerMinute int
}

// Client calls the chat completion endpoint.
type Client struct {
	llm         *openai.LLM
	temperature float64
	limiter     *rate.Limiter
}

// New creates a generation client.
func New(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60.0), cfg.RatePerMinute)
	}

	return &Client{
		llm:         llm,
		temperature: cfg.Temperature,
		limiter:     limiter,
	}, nil
}

// Generate completes the prompt and returns the generated text. Transient
// upstream failures (network, quota) surface as ErrUpstreamGeneration.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limiter: %v", ErrUpstreamGeneration, err)
		}
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: model returned empty completion", ErrUpstreamGeneration)
	}
	return out, nil
}
