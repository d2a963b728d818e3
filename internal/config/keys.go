package config

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

// setting reads and writes one dotted key
type setting struct {
	get func(*Config) string
	set func(*Config, string) error
}

var settings = map[string]setting{
	"provider.name":         stringSetting(func(c *Config) *string { return &c.Provider.Name }),
	"provider.model":        stringSetting(func(c *Config) *string { return &c.Provider.Model }),
	"provider.model_family": stringSetting(func(c *Config) *string { return &c.Provider.ModelFamily }),
	"provider.base_url":     stringSetting(func(c *Config) *string { return &c.Provider.BaseURL }),
	"provider.max_tokens":   intSetting(func(c *Config) *int { return &c.Provider.MaxTokens }),
	"provider.timeout":      durationSetting(func(c *Config) *Duration { return &c.Provider.Timeout }),

	"rate_limit.enabled":             boolSetting(func(c *Config) *bool { return &c.RateLimit.Enabled }),
	"rate_limit.max_concurrent":      intSetting(func(c *Config) *int { return &c.RateLimit.MaxConcurrent }),
	"rate_limit.requests_per_second": intSetting(func(c *Config) *int { return &c.RateLimit.RequestsPerSecond }),
	"rate_limit.requests_per_minute": intSetting(func(c *Config) *int { return &c.RateLimit.RequestsPerMinute }),

	"retry.enabled":            boolSetting(func(c *Config) *bool { return &c.Retry.Enabled }),
	"retry.max_retries":        intSetting(func(c *Config) *int { return &c.Retry.MaxRetries }),
	"retry.initial_delay":      durationSetting(func(c *Config) *Duration { return &c.Retry.InitialDelay }),
	"retry.max_delay":          durationSetting(func(c *Config) *Duration { return &c.Retry.MaxDelay }),
	"retry.backoff_multiplier": floatSetting(func(c *Config) *float64 { return &c.Retry.BackoffMultiplier }),

	"batch.enabled":  boolSetting(func(c *Config) *bool { return &c.Batch.Enabled }),
	"batch.max_size": intSetting(func(c *Config) *int { return &c.Batch.MaxSize }),
	"batch.timeout":  durationSetting(func(c *Config) *Duration { return &c.Batch.Timeout }),
	"batch.pacing":   durationSetting(func(c *Config) *Duration { return &c.Batch.Pacing }),

	"parsing.default_mode": upperSetting(func(c *Config) *string { return &c.Parsing.DefaultMode }),
	"parsing.strategy":     upperSetting(func(c *Config) *string { return &c.Parsing.Strategy }),
	"parsing.enrich":       boolSetting(func(c *Config) *bool { return &c.Parsing.Enrich }),

	"redis.enabled":  boolSetting(func(c *Config) *bool { return &c.Redis.Enabled }),
	"redis.addr":     stringSetting(func(c *Config) *string { return &c.Redis.Addr }),
	"redis.password": stringSetting(func(c *Config) *string { return &c.Redis.Password }),
	"redis.db":       intSetting(func(c *Config) *int { return &c.Redis.DB }),

	"srd.base_url":  stringSetting(func(c *Config) *string { return &c.SRD.BaseURL }),
	"srd.cache_ttl": durationSetting(func(c *Config) *Duration { return &c.SRD.CacheTTL }),

	"debug.enabled":     boolSetting(func(c *Config) *bool { return &c.Debug.Enabled }),
	"debug.log_prompts": boolSetting(func(c *Config) *bool { return &c.Debug.LogPrompts }),
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of key
func Get(cfg *Config, key string) (string, error) {
	if cfg == nil {
		return "", errors.InvalidArgument("config is required")
	}
	s, ok := settings[key]
	if !ok {
		return "", errors.NotFoundf("unknown setting %q", key)
	}
	return s.get(cfg), nil
}

// Update returns a copy of cfg with key set to value. cfg is never modified
// and the copy must pass Validate.
func Update(cfg *Config, key, value string) (*Config, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	s, ok := settings[key]
	if !ok {
		return nil, errors.NotFoundf("unknown setting %q", key)
	}

	next := *cfg
	if err := s.set(&next, strings.TrimSpace(value)); err != nil {
		return nil, errors.Wrapf(err, "failed to set %s", key)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// ApplyStored folds stored overrides into cfg. Unknown keys and values that
// no longer validate are skipped with a warning.
func ApplyStored(cfg *Config, values map[string]string) *Config {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		next, err := Update(cfg, k, values[k])
		if err != nil {
			slog.Warn("Ignoring stored setting", "key", k, "error", err)
			continue
		}
		cfg = next
	}
	return cfg
}

func stringSetting(field func(*Config) *string) setting {
	return setting{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func upperSetting(field func(*Config) *string) setting {
	return setting{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			*field(c) = strings.ToUpper(v)
			return nil
		},
	}
}

func boolSetting(field func(*Config) *bool) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.InvalidArgumentf("%q is not a boolean", v)
			}
			*field(c) = b
			return nil
		},
	}
}

func intSetting(field func(*Config) *int) setting {
	return setting{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.InvalidArgumentf("%q is not an integer", v)
			}
			*field(c) = n
			return nil
		},
	}
}

func floatSetting(field func(*Config) *float64) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.InvalidArgumentf("%q is not a number", v)
			}
			*field(c) = f
			return nil
		},
	}
}

func durationSetting(field func(*Config) *Duration) setting {
	return setting{
		get: func(c *Config) string { return field(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.InvalidArgumentf("%q is not a duration", v)
			}
			*field(c) = Duration{d}
			return nil
		},
	}
}
