package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("read tcp: connection reset by peer")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnNonRetryableError(t *testing.T) {
	sentinel := errors.New("pq: duplicate key value violates unique constraint")
	calls := 0
	err := WithRetry(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestWithRetryGivesUpAfterMaxRetries(t *testing.T) {
	sentinel := errors.New("driver: bad connection")
	calls := 0
	err := WithRetry(context.Background(), "reserve seats", func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, maxRetries, calls)
	assert.Contains(t, err.Error(), "reserve seats failed after 3 attempts")
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithRetry(ctx, "op", func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("dial tcp 127.0.0.1:5432: connection refused")))
	assert.True(t, IsRetryable(errors.New("write: broken pipe")))
	assert.True(t, IsRetryable(errors.New("driver: bad connection")))
	assert.True(t, IsRetryable(errors.New("i/o timeout")))
	assert.False(t, IsRetryable(errors.New("pq: value too long for type character varying(255)")))
}
