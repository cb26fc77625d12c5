package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastConfig() *Config {
	return &Config{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		JitterFactor:   0.1,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return errTransient
	}, nil)

	require.ErrorIs(t, err, errTransient)
	// Initial attempt plus MaxRetries retries.
	assert.Equal(t, 4, calls)
}

func TestDoNonRetryableError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("permanent")

	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return permanent
	}, &Options{
		ShouldRetry: func(err error) bool { return !errors.Is(err, permanent) },
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoOnRetryCallback(t *testing.T) {
	t.Parallel()

	var attempts []int
	_ = Do(context.Background(), fastConfig(), func() error {
		return errTransient
	}, &Options{
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			attempts = append(attempts, attempt)
			assert.ErrorIs(t, err, errTransient)
			assert.Greater(t, backoff, time.Duration(0))
		},
	})

	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDoContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(), func() error {
		calls++
		return errTransient
	}, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	cfg := &Config{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     time.Second,
		JitterFactor:   0.1,
	}

	err := Do(ctx, cfg, func() error { return errTransient }, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoNilConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), nil, func() error {
		calls++
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	t.Parallel()

	initial := 100 * time.Millisecond
	max := time.Second

	// Without jitter the sequence doubles until the cap.
	assert.Equal(t, 100*time.Millisecond, Backoff(0, initial, max, 0))
	assert.Equal(t, 200*time.Millisecond, Backoff(1, initial, max, 0))
	assert.Equal(t, 400*time.Millisecond, Backoff(2, initial, max, 0))
	assert.Equal(t, 800*time.Millisecond, Backoff(3, initial, max, 0))
	assert.Equal(t, time.Second, Backoff(4, initial, max, 0))
	assert.Equal(t, time.Second, Backoff(10, initial, max, 0))
}

func TestBackoffJitterBounds(t *testing.T) {
	t.Parallel()

	initial := 100 * time.Millisecond
	max := time.Minute

	for i := 0; i < 100; i++ {
		b := Backoff(1, initial, max, 0.5)
		assert.GreaterOrEqual(t, b, 200*time.Millisecond)
		assert.LessOrEqual(t, b, 300*time.Millisecond)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultInitialBackoff, cfg.InitialBackoff)
	assert.Equal(t, DefaultMaxBackoff, cfg.MaxBackoff)
	assert.Equal(t, DefaultJitterFactor, cfg.JitterFactor)
}
