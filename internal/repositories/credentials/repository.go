// Package credentials stores provider API keys
package credentials

import (
	"context"
	"strings"
	"sync"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-item-parser/internal/redis"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=credentialsmock github.com/KirkDiggler/rpg-item-parser/internal/repositories/credentials Repository

// Repository defines the interface for credential storage
type Repository interface {
	// Get returns the stored key for a provider
	// Returns errors.NotFound when no key was stored
	Get(ctx context.Context, provider string) (string, error)

	// Set stores the key for a provider, replacing any previous one
	Set(ctx context.Context, provider, apiKey string) error
}

const keyPrefix = "itemparser:credential:"

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis credential repository.
type RedisConfig struct {
	Client redisclient.Client
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a Redis-backed credential repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) Get(ctx context.Context, provider string) (string, error) {
	key, err := storageKey(provider)
	if err != nil {
		return "", err
	}

	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", errors.NotFoundf("no credential stored for %s", provider)
		}
		return "", errors.WrapWithCode(err, errors.CodeInternal, "failed to get credential")
	}
	return value, nil
}

func (r *redisRepository) Set(ctx context.Context, provider, apiKey string) error {
	key, err := storageKey(provider)
	if err != nil {
		return err
	}
	if strings.TrimSpace(apiKey) == "" {
		return errors.InvalidArgument("api key cannot be empty")
	}

	if err := r.client.Set(ctx, key, strings.TrimSpace(apiKey), 0).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeInternal, "failed to store credential")
	}
	return nil
}

func storageKey(provider string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(provider))
	if p == "" {
		return "", errors.InvalidArgument("provider cannot be empty")
	}
	return keyPrefix + p, nil
}

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{keys: make(map[string]string)}
}

// Get returns the stored key for a provider
func (r *InMemoryRepository) Get(_ context.Context, provider string) (string, error) {
	key, err := storageKey(provider)
	if err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.keys[key]
	if !ok {
		return "", errors.NotFoundf("no credential stored for %s", provider)
	}
	return value, nil
}

// Set stores the key for a provider
func (r *InMemoryRepository) Set(_ context.Context, provider, apiKey string) error {
	key, err := storageKey(provider)
	if err != nil {
		return err
	}
	if strings.TrimSpace(apiKey) == "" {
		return errors.InvalidArgument("api key cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[key] = strings.TrimSpace(apiKey)
	return nil
}
