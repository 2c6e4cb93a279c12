// Package retry wraps provider calls with exponential backoff. Only
// transient failures (rate limits, upstream overload, network timeouts)
// are retried; permanent and user-input errors fail through on the first
// attempt.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Config holds the backoff parameters.
type Config struct {
	// MaxAttempts is the total number of attempts. The initial call
	// counts as attempt 1; MaxAttempts 1 disables retries.
	MaxAttempts int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the wait between retries.
	MaxDelay time.Duration

	// Multiplier grows the delay per attempt.
	Multiplier float64

	// Jitter randomizes each delay by (1 + random(-jitter, +jitter)) to
	// avoid synchronized retry storms.
	Jitter float64
}

// DefaultConfig returns the backoff used by the provider clients:
// 5 attempts starting at 500ms, doubling up to 30s, with 10% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Disabled returns a single-attempt configuration.
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Delay returns the wait before retry number attempt (0-indexed):
// min(MaxDelay, InitialDelay * Multiplier^attempt), jittered.
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	if c.Jitter > 0 {
		delay *= 1.0 + (rand.Float64()*2-1)*c.Jitter
	}
	return time.Duration(delay)
}
