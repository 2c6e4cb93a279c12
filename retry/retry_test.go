package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spetersoncode/janus"
)

// fastConfig keeps backoff waits out of the test runtime.
func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoFirstAttemptSucceeds(t *testing.T) {
	calls := 0

	got, err := Do(context.Background(), DefaultConfig(), func() (string, error) {
		calls++
		return "reply", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "reply", got)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransient(t *testing.T) {
	calls := 0

	got, err := Do(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", janus.NewTransientError("rate limited", nil)
		}
		return "reply", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "reply", got)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanent(t *testing.T) {
	calls := 0
	cause := janus.NewPermanentError("model not found", nil)

	_, err := Do(context.Background(), fastConfig(5), func() (string, error) {
		calls++
		return "", cause
	})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnUnrecognizedError(t *testing.T) {
	// Uncategorized errors matching no transient pattern are not worth
	// repeating against the provider.
	calls := 0

	_, err := Do(context.Background(), fastConfig(5), func() (string, error) {
		calls++
		return "", errors.New("invalid input")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	cause := janus.NewTransientError("upstream overloaded", nil)

	_, err := Do(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		return "", cause
	})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	cfg := Config{
		MaxAttempts:  10,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
		Multiplier:   1.0,
	}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, cfg, func() (string, error) {
		calls++
		return "", janus.NewTransientError("rate limited", nil)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoDisabled(t *testing.T) {
	calls := 0

	_, err := Do(context.Background(), Disabled(), func() (string, error) {
		calls++
		return "", janus.NewTransientError("rate limited", nil)
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoStreamRetriesEstablishment(t *testing.T) {
	calls := 0

	ch, err := DoStream(context.Background(), fastConfig(3), func() (<-chan janus.StreamChunk, error) {
		calls++
		if calls < 3 {
			return nil, janus.NewTransientError("connection reset", nil)
		}
		out := make(chan janus.StreamChunk, 2)
		out <- janus.StreamChunk{Delta: "hello"}
		out <- janus.StreamChunk{Done: true}
		close(out)
		return out, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	chunk := <-ch
	assert.Equal(t, "hello", chunk.Delta)
}

func TestDoStreamStopsOnPermanent(t *testing.T) {
	calls := 0
	cause := janus.NewPermanentError("invalid credentials", nil)

	_, err := DoStream(context.Background(), fastConfig(5), func() (<-chan janus.StreamChunk, error) {
		calls++
		return nil, cause
	})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}

func TestDoStreamContextCancelledDuringBackoff(t *testing.T) {
	cfg := Config{
		MaxAttempts:  10,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
		Multiplier:   1.0,
	}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := DoStream(ctx, cfg, func() (<-chan janus.StreamChunk, error) {
		calls++
		return nil, janus.NewTransientError("rate limited", nil)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDelayGrowthAndCap(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, 100*time.Millisecond, cfg.Delay(0))
	assert.Equal(t, 400*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, time.Second, cfg.Delay(10)) // capped
	assert.Equal(t, 100*time.Millisecond, cfg.Delay(-1))
}

func TestDelayJitterStaysInBounds(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   1.0,
		Jitter:       0.1,
	}

	for i := 0; i < 50; i++ {
		d := cfg.Delay(0)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}
