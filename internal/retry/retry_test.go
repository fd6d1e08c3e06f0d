package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), DefaultConfig(), func() error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialDelay = 1 * time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond

	attempts := 0
	err := Do(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsMaxAttempts(t *testing.T) {
	cfg := Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	attempts := 0
	sentinel := errors.New("persistent")
	err := Do(context.Background(), cfg, func() error {
		attempts++
		return sentinel
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, sentinel)
}

func TestDo_ContextCancellationStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultConfig()
	cfg.InitialDelay = 100 * time.Millisecond

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, cfg, func() error {
			attempts++
			return errors.New("still failing")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, attempts, cfg.MaxAttempts)
}
