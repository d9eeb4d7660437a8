package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.attempts())
	assert.NoError(t, Disabled().Validate())
	assert.Equal(t, 1, Disabled().attempts())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, "max_attempts"},
		{"negative delay", func(c *Config) { c.InitialDelay = -time.Second }, "negative"},
		{"cap below start", func(c *Config) { c.MaxDelay = 100 * time.Millisecond }, "max_delay"},
		{"shrinking backoff", func(c *Config) { c.Multiplier = 0.5 }, "multiplier"},
		{"jitter above one", func(c *Config) { c.Jitter = 1.5 }, "jitter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestConfigAttemptsFloor(t *testing.T) {
	assert.Equal(t, 1, Config{}.attempts())
	assert.Equal(t, 1, Config{MaxAttempts: -2}.attempts())
	assert.Equal(t, 4, Config{MaxAttempts: 4}.attempts())
}

func TestConfigDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jitter = 0

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{-5, 500 * time.Millisecond},
		{0, 500 * time.Millisecond},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{10, 4 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestConfigDelayJitterBounds(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: time.Minute, Multiplier: 2, Jitter: 0.1}
	for range 100 {
		d := cfg.Delay(0)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}
