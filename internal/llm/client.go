package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/config"
	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
)

// ErrEmptyResponse is returned when the model answers with no text
var ErrEmptyResponse = errors.New("empty response from language model")

// Client sends the summary, diagram and extraction prompts to an
// OpenAI-compatible chat completions endpoint
type Client struct {
	client  openai.Client
	model   string
	limiter *Limiter
	log     logger.Logger
}

// NewClient creates a Client for cfg. Extra request options are appended
// after the ones derived from cfg.
func NewClient(cfg config.LLMConfig, log logger.Logger, opts ...option.RequestOption) *Client {
	// 429s are retried by RateLimitedCall
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{
		client:  openai.NewClient(reqOpts...),
		model:   cfg.Model,
		limiter: NewLimiter(0, 0),
		log:     log,
	}
}

// WithLimiter replaces the client's rate limiter and retry policy
func (c *Client) WithLimiter(l *Limiter) *Client {
	c.limiter = l
	return c
}

// Model returns the model name sent with every request
func (c *Client) Model() string {
	return c.model
}

// Summarize extracts the key concepts of text, grouped by theme
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text to summarize")
	}
	c.log.Info("Summarizing %d characters of text", len(text))
	return c.complete(ctx, "summarize text", summarizerPrompt+text)
}

// GenerateDiagram asks for a hierarchical Mermaid diagram of summary
func (c *Client) GenerateDiagram(ctx context.Context, summary string) (string, error) {
	if strings.TrimSpace(summary) == "" {
		return "", errors.New("no summary to diagram")
	}
	c.log.Info("Generating diagram from %d characters of summary", len(summary))
	return c.complete(ctx, "generate diagram", diagramPrompt+summary)
}

// ExtractMermaid asks the model to strip everything but the diagram from raw
func (c *Client) ExtractMermaid(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("no diagram to extract")
	}
	c.log.Debug("Extracting Mermaid code from %d characters", len(raw))
	return c.complete(ctx, "extract mermaid code", extractPrompt+raw)
}

func (c *Client) complete(ctx context.Context, task, prompt string) (string, error) {
	return RateLimitedCall(ctx, c.limiter, EstimateTokens(prompt), c.log, func(ctx context.Context) (string, error) {
		c.log.Debug("Calling %s to %s", c.model, task)
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(c.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
		})
		if err != nil {
			return "", fmt.Errorf("failed to %s: %w", task, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("failed to %s: %w", task, ErrEmptyResponse)
		}
		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return "", fmt.Errorf("failed to %s: %w", task, ErrEmptyResponse)
		}
		return content, nil
	})
}
