package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"golang.org/x/time/rate"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
)

const (
	// Gemini's free tier allows 1M tokens/min for gemini-1.5-flash; stay well
	// below it since several users may share one key.
	defaultTokensPerSecond = 10000
	defaultBurstTokens     = 200000

	// Retry configuration
	defaultMaxRetries     = 5
	defaultBaseRetryDelay = 1 * time.Second
	defaultMaxRetryDelay  = 32 * time.Second
)

// Limiter combines a token-bucket rate limit with the retry policy used for
// 429 responses
type Limiter struct {
	limiter    *rate.Limiter
	burst      int
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// NewLimiter creates a Limiter allowing tokensPerSecond sustained with bursts
// of up to burst tokens. Non-positive values select the defaults.
func NewLimiter(tokensPerSecond, burst int) *Limiter {
	if tokensPerSecond <= 0 {
		tokensPerSecond = defaultTokensPerSecond
	}
	if burst <= 0 {
		burst = defaultBurstTokens
	}
	return &Limiter{
		limiter:    rate.NewLimiter(rate.Limit(tokensPerSecond), burst),
		burst:      burst,
		MaxRetries: defaultMaxRetries,
		BaseDelay:  defaultBaseRetryDelay,
		MaxDelay:   defaultMaxRetryDelay,
	}
}

// EstimateTokens gives a rough token count for a prompt (about four bytes per
// token) plus an allowance for the response
func EstimateTokens(prompt string) int {
	return len(prompt)/4 + 1000
}

// RateLimitedCall wraps an API call with rate limiting and retry logic.
// It waits for rate limiter approval before making the call, and retries on 429 errors.
func RateLimitedCall[T any](ctx context.Context, l *Limiter, estimatedTokens int, log logger.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	// WaitN fails outright for requests larger than the bucket
	if estimatedTokens > l.burst {
		estimatedTokens = l.burst
	}
	if err := l.limiter.WaitN(ctx, estimatedTokens); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= l.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(l.BaseDelay) * math.Pow(2, float64(attempt-1)))
			if delay > l.MaxDelay {
				delay = l.MaxDelay
			}

			log.Info("Retry attempt %d/%d after %v delay", attempt, l.MaxRetries, delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info("Retry succeeded on attempt %d", attempt)
			}
			return result, nil
		}

		lastErr = err
		if !isRateLimitError(err) {
			return zero, err
		}

		log.Warn("Rate limit error (429) on attempt %d/%d: %v", attempt+1, l.MaxRetries+1, err)
	}

	return zero, fmt.Errorf("max retries (%d) exceeded, last error: %w", l.MaxRetries, lastErr)
}

// isRateLimitError checks if an error is a 429 rate limit error, either as a
// typed API error or by its message
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	errStr := err.Error()
	for _, marker := range []string{"429", "rate limit", "rate_limit_exceeded", "RESOURCE_EXHAUSTED", "Too Many Requests"} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}
