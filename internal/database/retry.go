package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	maxRetries   = 3
	backoffDelay = 100 * time.Millisecond
)

// WithRetry runs fn up to maxRetries times, retrying only transient
// connection-level failures with linear backoff. Business failures and
// non-retryable store errors are returned immediately. Used only around
// the conditional reserve; ledger and payment writes must not be retried.
func WithRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return err
		}

		if attempt < maxRetries {
			slog.Warn("Transient store error, retrying",
				"op", op, "attempt", attempt, "max_retries", maxRetries, "error", err)
			select {
			case <-time.After(time.Duration(attempt) * backoffDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, maxRetries, lastErr)
}

// IsRetryable reports whether err looks like a temporary connection-level
// failure rather than a statement or constraint error.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	retryableErrors := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"timeout",
		"driver: bad connection",
	}

	for _, retryable := range retryableErrors {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}

	return false
}
