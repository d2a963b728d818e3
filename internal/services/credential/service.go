// Package credential validates provider API keys with a live probe
package credential

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/rpg-item-parser/internal/clients/llm"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/credentials"
)

// Status is the outcome of a credential probe
type Status string

// Probe outcomes
const (
	StatusValid         Status = "VALID"
	StatusNoModelAccess Status = "NO_MODEL_ACCESS"
	StatusInvalidKey    Status = "INVALID_KEY"
)

// Model families a key must be able to reach, per provider
var defaultFamilies = map[string]string{
	llm.ProviderOpenAI:    "gpt-4",
	llm.ProviderAnthropic: "claude",
}

// ListerFactory builds a model lister for a provider and key
type ListerFactory func(provider, apiKey string) (llm.ModelLister, error)

// Config configures the Service
type Config struct {
	Credentials credentials.Repository
	// Listers defaults to NewLister
	Listers ListerFactory
	// ModelFamily overrides the per-provider family substring
	ModelFamily string
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Credentials == nil {
		vb.RequiredField("credentials")
	}
	return vb.Build()
}

// Service reads, stores and validates credentials
type Service struct {
	store   credentials.Repository
	listers ListerFactory
	family  string
}

// New creates a Service
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	listers := cfg.Listers
	if listers == nil {
		listers = NewLister
	}

	return &Service{
		store:   cfg.Credentials,
		listers: listers,
		family:  strings.ToLower(cfg.ModelFamily),
	}, nil
}

// NewLister creates an SDK backed lister
func NewLister(provider, apiKey string) (llm.ModelLister, error) {
	return llm.New(&llm.Config{Provider: provider, APIKey: apiKey})
}

// GetCredential returns the stored key for provider
func (s *Service) GetCredential(ctx context.Context, provider string) (string, error) {
	return s.store.Get(ctx, provider)
}

// SetCredential stores the key for provider
func (s *Service) SetCredential(ctx context.Context, provider, apiKey string) error {
	return s.store.Set(ctx, provider, apiKey)
}

// ValidateInput defines the input for a probe. An empty APIKey probes the
// stored key.
type ValidateInput struct {
	Provider string
	APIKey   string
}

// ValidateOutput defines the result of a probe
type ValidateOutput struct {
	Status Status
	// Models is what the key can list, empty for invalid keys
	Models []string
	// Family is the substring that was looked for
	Family string
}

// Validate lists the models the key can reach and looks for the required
// model family among them. Rejected keys give StatusInvalidKey and no error;
// other probe failures are returned as errors.
func (s *Service) Validate(ctx context.Context, input *ValidateInput) (*ValidateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	family := s.familyFor(provider)

	apiKey := strings.TrimSpace(input.APIKey)
	if apiKey == "" {
		stored, err := s.store.Get(ctx, provider)
		if errors.IsNotFound(err) {
			return &ValidateOutput{Status: StatusInvalidKey, Family: family}, nil
		}
		if err != nil {
			return nil, err
		}
		apiKey = stored
	}

	lister, err := s.listers(provider, apiKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create model lister")
	}

	models, err := lister.ListModels(ctx)
	if err != nil {
		if isRejected(err) {
			slog.InfoContext(ctx, "Credential rejected by provider", "provider", provider, "error", err)
			return &ValidateOutput{Status: StatusInvalidKey, Family: family}, nil
		}
		return nil, errors.Wrap(err, "credential probe failed")
	}

	out := &ValidateOutput{Status: StatusNoModelAccess, Models: models, Family: family}
	for _, m := range models {
		if strings.Contains(strings.ToLower(m), family) {
			out.Status = StatusValid
			break
		}
	}

	slog.InfoContext(ctx, "Credential validated",
		"provider", provider,
		"status", out.Status,
		"models", len(models))
	return out, nil
}

func (s *Service) familyFor(provider string) string {
	if s.family != "" {
		return s.family
	}
	if f, ok := defaultFamilies[provider]; ok {
		return f
	}
	return provider
}

func isRejected(err error) bool {
	switch errors.StatusCode(err) {
	case 401, 403:
		return true
	}
	return errors.IsUnauthenticated(err) || errors.GetCode(err) == errors.CodePermissionDenied
}
