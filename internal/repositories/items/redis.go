package items

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-item-parser/internal/redis"
)

const (
	itemKeyPrefix = "itemparser:item:"
	itemIndexKey  = "itemparser:items"

	errItemNil     = "item cannot be nil"
	errItemIDEmpty = "item ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ids    idgen.Generator
}

// RedisConfig contains configuration for the Redis item repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
	IDs    idgen.Generator
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

// NewRedis creates a new Redis-backed item repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	ids := cfg.IDs
	if ids == nil {
		ids = idgen.NewUUID("item")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
		ids:    ids,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil || input.Item == nil {
		return nil, errors.InvalidArgument(errItemNil)
	}

	record := &Record{
		ID:        r.ids.Generate(),
		Item:      input.Item,
		RawText:   input.RawText,
		CreatedAt: r.clock.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal item")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, itemKeyPrefix+record.ID, data, 0)
	pipe.ZAdd(ctx, itemIndexKey, redis.Z{
		Score:  float64(record.CreatedAt.UnixNano()),
		Member: record.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to store item")
	}

	return &CreateOutput{Record: record}, nil
}

func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	result, err := r.client.Get(ctx, itemKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("item with ID %s not found", input.ID)
		}
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to get item")
	}

	var record Record
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to unmarshal item")
	}

	return &GetOutput{Record: &record}, nil
}

func (r *redisRepository) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	stop := int64(-1)
	if input != nil && input.Limit > 0 {
		stop = int64(input.Limit) - 1
	}

	ids, err := r.client.ZRevRange(ctx, itemIndexKey, 0, stop).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to list items")
	}
	if len(ids) == 0 {
		return &ListOutput{Records: []*Record{}}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = itemKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to load items")
	}

	records := make([]*Record, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// index entry without data, left by a delete that raced a list
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(s), &record); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to unmarshal item").
				WithMeta("id", ids[i])
		}
		records = append(records, &record)
	}

	return &ListOutput{Records: records}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, itemKeyPrefix+input.ID)
	pipe.ZRem(ctx, itemIndexKey, input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to delete item")
	}
	if del.Val() == 0 {
		return nil, errors.NotFoundf("item with ID %s not found", input.ID)
	}

	return &DeleteOutput{}, nil
}
