package settings

import (
	"context"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-item-parser/internal/redis"
)

const errKeyEmpty = "setting key cannot be empty"

type redisRepository struct {
	client redisclient.Client
	hash   string
}

// RedisConfig contains configuration for the Redis settings repository.
type RedisConfig struct {
	Client redisclient.Client
	// Namespace defaults to DefaultNamespace
	Namespace string
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

// NewRedis creates a settings repository backed by one redis hash
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	return &redisRepository{
		client: cfg.Client,
		hash:   ns + ":settings",
	}, nil
}

func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	value, err := r.client.HGet(ctx, r.hash, input.Key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("setting %s is not set", input.Key)
		}
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to get setting")
	}

	return &GetOutput{Value: value}, nil
}

func (r *redisRepository) Set(ctx context.Context, input *SetInput) (*SetOutput, error) {
	if input == nil || input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	if err := r.client.HSet(ctx, r.hash, input.Key, input.Value).Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to store setting")
	}

	return &SetOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context) (*ListOutput, error) {
	values, err := r.client.HGetAll(ctx, r.hash).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to list settings")
	}

	return &ListOutput{Values: values}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	if err := r.client.HDel(ctx, r.hash, input.Key).Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to delete setting")
	}

	return &DeleteOutput{}, nil
}
