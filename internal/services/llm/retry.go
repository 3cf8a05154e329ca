package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/common"
)

// RetryPolicy defines bounded exponential backoff for provider calls. One
// policy is shared by every pipeline stage that retries; stages that must
// not retry use NoRetry.
type RetryPolicy struct {
	// MaxAttempts is the total number of invocations, including the first
	MaxAttempts int

	// InitialBackoff is the wait before the first retry
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between retries
	MaxBackoff time.Duration

	// Multiplier is applied to the backoff on each retry
	Multiplier float64
}

// NewRetryPolicy builds a policy from configuration
func NewRetryPolicy(cfg common.RetryConfig) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Multiplier:     cfg.BackoffMultiplier,
	}
}

// NoRetry returns a policy that performs exactly one attempt
func NoRetry() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:    1,
		InitialBackoff: 0,
		MaxBackoff:     0,
		Multiplier:     1,
	}
}

// IsRateLimitError checks if an error is a provider rate limit error.
// Matches 429 status codes and RESOURCE_EXHAUSTED errors.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from a rate limit
// error message. Returns 0 if no delay is found.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// Backoff computes the wait before the retry following the given attempt
// (0-based). If apiDelay > 0 it is used as the base instead of
// InitialBackoff. The result is capped at MaxBackoff.
func (p *RetryPolicy) Backoff(attempt int, apiDelay time.Duration) time.Duration {
	base := p.InitialBackoff
	if apiDelay > 0 {
		base = apiDelay + time.Second
	}

	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= p.Multiplier
	}

	backoff := time.Duration(float64(base) * multiplier)
	if backoff > p.MaxBackoff {
		backoff = p.MaxBackoff
	}

	return backoff
}

// Do invokes fn up to MaxAttempts times, sleeping between attempts with
// exponential backoff. Cancellation is honored both during fn (via ctx) and
// during backoff sleeps. The returned error wraps the last attempt's error.
func (p *RetryPolicy) Do(ctx context.Context, logger arbor.ILogger, op string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxAttempts-1 {
			break
		}

		var backoff time.Duration
		if IsRateLimitError(lastErr) {
			backoff = p.Backoff(attempt, ExtractRetryDelay(lastErr))
		} else {
			backoff = p.Backoff(attempt, 0)
		}

		logger.Warn().
			Str("op", op).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(lastErr).
			Msg("Retrying provider call")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, p.MaxAttempts, lastErr)
}
