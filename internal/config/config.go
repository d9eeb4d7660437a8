// Package config loads service configuration from a .env file, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/internal/retry"
	"github.com/spetersoncode/maildraft/workflow"
)

// DefaultPath is read when MAILDRAFT_CONFIG is unset.
const DefaultPath = "maildraft.yaml"

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Retry    RetryConfig    `yaml:"retry"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Cost     CostConfig     `yaml:"cost"`
	Store    StoreConfig    `yaml:"store"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json
}

type LLMConfig struct {
	Provider        string        `yaml:"provider"` // anthropic, openai, google, stub
	Model           string        `yaml:"model"`
	Temperature     *float64      `yaml:"temperature"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	CallTimeout     time.Duration `yaml:"call_timeout"`

	AnthropicKey   string `yaml:"-"`
	OpenAIKey      string `yaml:"-"`
	GoogleKey      string `yaml:"-"`
	VertexProject  string `yaml:"vertex_project"`
	VertexLocation string `yaml:"vertex_location"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	Jitter       float64       `yaml:"jitter"`
}

type PipelineConfig struct {
	Stages         []string      `yaml:"stages"`
	HistoryLimit   int           `yaml:"history_limit"`
	RunTimeout     time.Duration `yaml:"run_timeout"`
	DiffThreshold  float64       `yaml:"diff_threshold"`
	RefineMinRatio float64       `yaml:"refine_min_ratio"`
	PersistTimeout time.Duration `yaml:"persist_timeout"`
	LearnFromEdits bool          `yaml:"learn_from_edits"`
}

// CostConfig enables cost estimation. Without overrides calls are priced
// from the model catalogue.
type CostConfig struct {
	Enabled          bool     `yaml:"enabled"`
	InputPerMillion  *float64 `yaml:"input_per_million"`
	OutputPerMillion *float64 `yaml:"output_per_million"`
}

type StoreConfig struct {
	DatabaseURL      string        `yaml:"database_url"`
	HistoryRetention int           `yaml:"history_retention"`
	ProfileCacheTTL  time.Duration `yaml:"profile_cache_ttl"`
	ProfileCacheSize int           `yaml:"profile_cache_size"`
}

type KafkaConfig struct {
	Brokers   []string `yaml:"brokers"`
	RunsTopic string   `yaml:"runs_topic"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	r := retry.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:      "8000",
			LogLevel:  "info",
			LogFormat: "text",
		},
		LLM: LLMConfig{
			Provider:    string(ai.ProviderStub),
			CallTimeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  r.MaxAttempts,
			InitialDelay: r.InitialDelay,
			MaxDelay:     r.MaxDelay,
			Multiplier:   r.Multiplier,
			Jitter:       r.Jitter,
		},
		Pipeline: PipelineConfig{
			HistoryLimit:   workflow.DefaultHistoryLimit,
			RunTimeout:     workflow.DefaultRunTimeout,
			DiffThreshold:  workflow.DefaultDiffThreshold,
			RefineMinRatio: workflow.DefaultRefineMinRatio,
			PersistTimeout: workflow.DefaultPersistTimeout,
			LearnFromEdits: true,
		},
		Store: StoreConfig{
			ProfileCacheTTL:  5 * time.Minute,
			ProfileCacheSize: 256,
		},
		Kafka: KafkaConfig{
			RunsTopic: "maildraft-runs",
		},
	}
}

// Load builds the configuration. path names the YAML file; empty uses
// MAILDRAFT_CONFIG, then DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	godotenv.Load() // Load .env file if present

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = getEnvOrDefault("MAILDRAFT_CONFIG", DefaultPath)
		explicit = os.Getenv("MAILDRAFT_CONFIG") != ""
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "MAILDRAFT_PORT")
	setString(&c.Server.LogLevel, "MAILDRAFT_LOG_LEVEL")
	setString(&c.Server.LogFormat, "MAILDRAFT_LOG_FORMAT")

	setString(&c.LLM.Provider, "MAILDRAFT_PROVIDER")
	setString(&c.LLM.Model, "MAILDRAFT_MODEL")
	setString(&c.LLM.VertexProject, "VERTEX_PROJECT")
	setString(&c.LLM.VertexLocation, "VERTEX_LOCATION")
	c.LLM.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	c.LLM.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.LLM.GoogleKey = os.Getenv("GOOGLE_API_KEY")

	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	setString(&c.Kafka.RunsTopic, "KAFKA_RUNS_TOPIC")
	if v := os.Getenv("MAILDRAFT_STAGES"); v != "" {
		c.Pipeline.Stages = splitList(v)
	}

	var errs []error
	errs = append(errs,
		setDuration(&c.LLM.CallTimeout, "MAILDRAFT_CALL_TIMEOUT"),
		setInt(&c.Retry.MaxAttempts, "MAILDRAFT_RETRY_MAX_ATTEMPTS"),
		setDuration(&c.Retry.InitialDelay, "MAILDRAFT_RETRY_INITIAL_DELAY"),
		setDuration(&c.Retry.MaxDelay, "MAILDRAFT_RETRY_MAX_DELAY"),
		setFloat(&c.Retry.Multiplier, "MAILDRAFT_RETRY_MULTIPLIER"),
		setFloat(&c.Retry.Jitter, "MAILDRAFT_RETRY_JITTER"),
		setInt(&c.Pipeline.HistoryLimit, "MAILDRAFT_HISTORY_LIMIT"),
		setDuration(&c.Pipeline.RunTimeout, "MAILDRAFT_RUN_TIMEOUT"),
		setFloat(&c.Pipeline.DiffThreshold, "MAILDRAFT_DIFF_THRESHOLD"),
		setFloat(&c.Pipeline.RefineMinRatio, "MAILDRAFT_REFINE_MIN_RATIO"),
		setBool(&c.Cost.Enabled, "MAILDRAFT_COST_ENABLED"),
		setFloatPtr(&c.Cost.InputPerMillion, "MAILDRAFT_COST_INPUT_PER_MILLION"),
		setFloatPtr(&c.Cost.OutputPerMillion, "MAILDRAFT_COST_OUTPUT_PER_MILLION"),
		setInt(&c.Store.HistoryRetention, "MAILDRAFT_HISTORY_RETENTION"),
	)
	return errors.Join(errs...)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	provider, ok := ai.ParseProvider(c.LLM.Provider)
	if !ok {
		return fmt.Errorf("unknown provider: %s (must be anthropic, openai, google, or stub)", c.LLM.Provider)
	}
	switch provider {
	case ai.ProviderAnthropic:
		if c.LLM.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case ai.ProviderOpenAI:
		if c.LLM.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	case ai.ProviderGoogle:
		if c.LLM.GoogleKey == "" && (c.LLM.VertexProject == "" || c.LLM.VertexLocation == "") {
			return fmt.Errorf("GOOGLE_API_KEY or VERTEX_PROJECT and VERTEX_LOCATION are required for google provider")
		}
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	switch c.Server.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Server.LogFormat)
	}

	if err := c.RetryPolicy().Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if c.Pipeline.DiffThreshold <= 0 || c.Pipeline.DiffThreshold >= 1 {
		return fmt.Errorf("pipeline.diff_threshold must be within (0, 1)")
	}
	if c.Pipeline.RefineMinRatio <= 0 || c.Pipeline.RefineMinRatio > 1 {
		return fmt.Errorf("pipeline.refine_min_ratio must be within (0, 1]")
	}
	if c.Pipeline.HistoryLimit < 0 {
		return fmt.Errorf("pipeline.history_limit must not be negative")
	}
	if len(c.Pipeline.Stages) > 0 {
		if _, err := workflow.StagesByName(c.Pipeline.Stages, c.Pipeline.RefineMinRatio); err != nil {
			return fmt.Errorf("pipeline.stages: %w", err)
		}
	}
	if (c.Cost.InputPerMillion == nil) != (c.Cost.OutputPerMillion == nil) {
		return fmt.Errorf("cost.input_per_million and cost.output_per_million must be set together")
	}
	return nil
}

// RetryPolicy converts the retry section.
func (c *Config) RetryPolicy() retry.Config {
	return retry.Config{
		MaxAttempts:  c.Retry.MaxAttempts,
		InitialDelay: c.Retry.InitialDelay,
		MaxDelay:     c.Retry.MaxDelay,
		Multiplier:   c.Retry.Multiplier,
		Jitter:       c.Retry.Jitter,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = i
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setFloatPtr(dst **float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = &f
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
