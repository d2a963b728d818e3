// Package config loads the item parser configuration from a TOML file, the
// environment and stored settings.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/KirkDiggler/rpg-item-parser/internal/batch"
	"github.com/KirkDiggler/rpg-item-parser/internal/clients/llm"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/itemparse"
	"github.com/KirkDiggler/rpg-item-parser/internal/retry"
)

// DefaultPath is the config file read when no --config flag is given
const DefaultPath = "itemparser.toml"

// Config holds all user-facing configuration for the item parser.
type Config struct {
	Provider  ProviderConfig  `toml:"provider"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Retry     RetryConfig     `toml:"retry"`
	Batch     BatchConfig     `toml:"batch"`
	Parsing   ParsingConfig   `toml:"parsing"`
	Redis     RedisConfig     `toml:"redis"`
	SRD       SRDConfig       `toml:"srd"`
	Debug     DebugConfig     `toml:"debug"`
}

type ProviderConfig struct {
	Name string `toml:"name"`
	// Model and ModelFamily fall back to per-provider defaults when empty
	Model       string   `toml:"model"`
	ModelFamily string   `toml:"model_family"`
	BaseURL     string   `toml:"base_url"`
	MaxTokens   int      `toml:"max_tokens"`
	Timeout     Duration `toml:"timeout"`

	// APIKey only comes from the environment or the credential store
	APIKey string `toml:"-"`
}

type RateLimitConfig struct {
	Enabled           bool `toml:"enabled"`
	MaxConcurrent     int  `toml:"max_concurrent"`
	RequestsPerSecond int  `toml:"requests_per_second"`
	RequestsPerMinute int  `toml:"requests_per_minute"`
}

type RetryConfig struct {
	Enabled           bool     `toml:"enabled"`
	MaxRetries        int      `toml:"max_retries"`
	InitialDelay      Duration `toml:"initial_delay"`
	MaxDelay          Duration `toml:"max_delay"`
	BackoffMultiplier float64  `toml:"backoff_multiplier"`
}

type BatchConfig struct {
	Enabled bool     `toml:"enabled"`
	MaxSize int      `toml:"max_size"`
	Timeout Duration `toml:"timeout"`
	Pacing  Duration `toml:"pacing"`
}

type ParsingConfig struct {
	DefaultMode string `toml:"default_mode"`
	Strategy    string `toml:"strategy"`
	Enrich      bool   `toml:"enrich"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type SRDConfig struct {
	BaseURL  string   `toml:"base_url"`
	CacheTTL Duration `toml:"cache_ttl"`
}

type DebugConfig struct {
	Enabled    bool `toml:"enabled"`
	LogPrompts bool `toml:"log_prompts"`
}

// Duration is a time.Duration written as "500ms" or "2m" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.InvalidArgumentf("invalid duration %q", string(text))
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:      llm.ProviderOpenAI,
			MaxTokens: llm.DefaultMaxTokens,
			Timeout:   Duration{llm.DefaultTimeout},
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			MaxConcurrent:     3,
			RequestsPerSecond: 2,
			RequestsPerMinute: 50,
		},
		Retry: RetryConfig{
			Enabled:           true,
			MaxRetries:        retry.DefaultMaxRetries,
			InitialDelay:      Duration{retry.DefaultInitialDelay},
			MaxDelay:          Duration{retry.DefaultMaxDelay},
			BackoffMultiplier: retry.DefaultBackoffMultiplier,
		},
		Batch: BatchConfig{
			Enabled: false,
			MaxSize: batch.DefaultMaxBatchSize,
			Timeout: Duration{batch.DefaultTimeout},
			Pacing:  Duration{batch.DefaultPacing},
		},
		Parsing: ParsingConfig{
			DefaultMode: string(itemparse.ModeOneCall),
			Strategy:    string(itemparse.StrategyBasicItemExtraction),
			Enrich:      true,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		SRD: SRDConfig{
			BaseURL:  "https://www.dnd5eapi.co/api/2014/",
			CacheTTL: Duration{24 * time.Hour},
		},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config in %s", path)
	}

	return cfg, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateEnum("provider.name", c.Provider.Name, []string{llm.ProviderOpenAI, llm.ProviderAnthropic}, vb)
	errors.ValidateDuration("provider.timeout", c.Provider.Timeout.Duration, vb)
	errors.ValidateRange("provider.max_tokens", c.Provider.MaxTokens, 1, 200000, vb)

	errors.ValidateRange("rate_limit.max_concurrent", c.RateLimit.MaxConcurrent, 0, 100, vb)
	errors.ValidateRange("rate_limit.requests_per_second", c.RateLimit.RequestsPerSecond, 0, 1000, vb)
	errors.ValidateRange("rate_limit.requests_per_minute", c.RateLimit.RequestsPerMinute, 0, 60000, vb)

	errors.ValidateRange("retry.max_retries", c.Retry.MaxRetries, 0, 10, vb)
	if c.Retry.Enabled {
		errors.ValidateDuration("retry.initial_delay", c.Retry.InitialDelay.Duration, vb)
		errors.ValidateDuration("retry.max_delay", c.Retry.MaxDelay.Duration, vb)
		if c.Retry.BackoffMultiplier < 1 {
			vb.Field("retry.backoff_multiplier", "must be at least 1")
		}
	}

	errors.ValidateRange("batch.max_size", c.Batch.MaxSize, 1, 50, vb)
	errors.ValidateDuration("batch.timeout", c.Batch.Timeout.Duration, vb)
	if c.Batch.Pacing.Duration < 0 {
		vb.Field("batch.pacing", "must not be negative")
	}

	errors.ValidateEnum("parsing.default_mode", c.Parsing.DefaultMode, toStrings(itemparse.AllModes()), vb)
	errors.ValidateEnum("parsing.strategy", c.Parsing.Strategy, toStrings(itemparse.AllStrategies()), vb)

	if c.Redis.Enabled {
		errors.ValidateRequired("redis.addr", c.Redis.Addr, vb)
	}
	errors.ValidateRange("redis.db", c.Redis.DB, 0, 15, vb)

	errors.ValidateDuration("srd.cache_ttl", c.SRD.CacheTTL.Duration, vb)

	return vb.Build()
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
