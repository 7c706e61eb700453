package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// backoff is swapped out by tests.
var backoff = Backoff

// CompleteWithRetry calls p.Complete up to MaxRetries times, sleeping
// between attempts while the error is retryable.
func CompleteWithRetry(ctx context.Context, p TextCompletionProvider, req Request, log *slog.Logger) (string, error) {
	var out string
	var lastErr error
	for attempt := range MaxRetries {
		out, lastErr = p.Complete(ctx, req)
		if lastErr == nil || !IsRetryable(lastErr) {
			return out, lastErr
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable completion error", "provider", p.Name(), "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}
