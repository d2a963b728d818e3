package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/KirkDiggler/rpg-item-parser/internal/clients/llm"
)

// EnvPrefix prefixes every setting override, e.g. ITEMPARSER_BATCH_ENABLED
const EnvPrefix = "ITEMPARSER_"

// LookupFunc reads one environment variable
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads a .env file from the working directory if one exists
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found")
		return
	}
	slog.Debug("Loaded .env file")
}

// EnvName returns the environment variable that overrides key
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// FromEnv returns cfg with overrides from the process environment applied
func FromEnv(cfg *Config) (*Config, error) {
	return ApplyEnv(cfg, os.LookupEnv)
}

// ApplyEnv applies ITEMPARSER_* overrides, the provider API keys and
// REDIS_ADDR. A bad override is an error rather than a silent default.
func ApplyEnv(cfg *Config, lookup LookupFunc) (*Config, error) {
	for _, key := range Keys() {
		v, ok := lookup(EnvName(key))
		if !ok || v == "" {
			continue
		}
		next, err := Update(cfg, key, v)
		if err != nil {
			return nil, err
		}
		cfg = next
	}

	next := *cfg
	if addr, ok := lookup("REDIS_ADDR"); ok && addr != "" {
		next.Redis.Addr = addr
		next.Redis.Enabled = true
	}
	if pw, ok := lookup("REDIS_PASSWORD"); ok && pw != "" {
		next.Redis.Password = pw
	}

	envKey := "OPENAI_API_KEY"
	if next.Provider.Name == llm.ProviderAnthropic {
		envKey = "ANTHROPIC_API_KEY"
	}
	if key, ok := lookup(envKey); ok && key != "" {
		next.Provider.APIKey = key
	}

	return &next, nil
}
