// Package llm adapts hosted language model APIs to a plain text completion call.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

//go:generate mockgen -destination=mock/mock_client.go -package=llmmock github.com/KirkDiggler/rpg-item-parser/internal/clients/llm Completer,ModelLister

// Supported providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Defaults applied by Config.Validate
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultMaxTokens      = 4096
	DefaultTimeout        = 2 * time.Minute
)

// CompleteInput is a single prompt
type CompleteInput struct {
	Prompt string
	// MaxTokens overrides the client default when positive
	MaxTokens int
}

// CompleteOutput is the raw model text
type CompleteOutput struct {
	Text  string
	Model string
}

// Completer sends a prompt and returns the model's text
type Completer interface {
	Complete(ctx context.Context, input *CompleteInput) (*CompleteOutput, error)
}

// ModelLister lists the models the credential can use
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Client is a provider adapter
type Client interface {
	Completer
	ModelLister
	Provider() string
}

// Config selects and configures a provider
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// Validate validates the config and fills defaults
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	errors.ValidateEnum("provider", c.Provider, []string{ProviderOpenAI, ProviderAnthropic}, vb)
	errors.ValidateRequired("api_key", strings.TrimSpace(c.APIKey), vb)

	if c.Model == "" {
		switch c.Provider {
		case ProviderAnthropic:
			c.Model = DefaultAnthropicModel
		default:
			c.Model = DefaultOpenAIModel
		}
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	return vb.Build()
}

// New creates the client for cfg.Provider
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropic(cfg)
	default:
		return NewOpenAI(cfg)
	}
}

func maxTokens(input *CompleteInput, fallback int) int64 {
	if input.MaxTokens > 0 {
		return int64(input.MaxTokens)
	}
	return int64(fallback)
}
