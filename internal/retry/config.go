// Package retry provides bounded exponential backoff for model calls.
package retry

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Config is the backoff policy of a model call. The first call counts as
// attempt one, so MaxAttempts 3 allows two retries. Each delay is
// InitialDelay*Multiplier^n capped at MaxDelay, then scaled by a random
// factor within 1±Jitter.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64
}

// DefaultConfig returns the policy used for model calls: three attempts,
// 500ms doubling to at most 4s, with 10% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     4 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Disabled makes a single attempt.
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Validate rejects policies that would never attempt a call or would
// shrink and randomise delays past usefulness.
func (c Config) Validate() error {
	var errs []error
	if c.MaxAttempts < 1 {
		errs = append(errs, errors.New("max_attempts must be at least 1"))
	}
	if c.InitialDelay < 0 || c.MaxDelay < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if c.MaxDelay > 0 && c.MaxDelay < c.InitialDelay {
		errs = append(errs, errors.New("max_delay must not be below initial_delay"))
	}
	if c.MaxAttempts > 1 && c.Multiplier < 1 {
		errs = append(errs, errors.New("multiplier must be at least 1"))
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		errs = append(errs, errors.New("jitter must be within [0, 1]"))
	}
	return errors.Join(errs...)
}

func (c Config) attempts() int {
	return max(c.MaxAttempts, 1)
}

// Delay returns the wait after the given 0-indexed attempt.
func (c Config) Delay(attempt int) time.Duration {
	d := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(max(attempt, 0)))
	if c.MaxDelay > 0 {
		d = math.Min(d, float64(c.MaxDelay))
	}
	if c.Jitter > 0 {
		d *= 1 + (2*rand.Float64()-1)*c.Jitter
	}
	return time.Duration(d)
}
