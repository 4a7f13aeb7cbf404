package inventory

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	"github.com/ashfall-rpg/gm-api/internal/pkg/clock"
	redisclient "github.com/ashfall-rpg/gm-api/internal/redis"
)

const (
	rowKeyPrefix         = "inventory:"
	characterIndexPrefix = "inventory:character:"

	errRowNil         = "inventory row cannot be nil"
	errRowIDEmpty     = "inventory row ID cannot be empty"
	errRowNoCharacter = "inventory row character ID cannot be empty"
	errCharIDEmpty    = "character ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis inventory repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
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

// NewRedis creates a new Redis-backed inventory repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{client: cfg.Client, clock: c}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Row == nil {
		return nil, errors.InvalidArgument(errRowNil)
	}
	if input.Row.ID == "" {
		return nil, errors.InvalidArgument(errRowIDEmpty)
	}
	if input.Row.CharacterID == "" {
		return nil, errors.InvalidArgument(errRowNoCharacter)
	}

	key := rowKeyPrefix + input.Row.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("inventory row with ID %s already exists", input.Row.ID)
	}

	now := r.clock.Now().Unix()
	input.Row.CreatedAt = now
	input.Row.UpdatedAt = now

	data, err := json.Marshal(input.Row)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal inventory row")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, characterIndexPrefix+input.Row.CharacterID, input.Row.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create inventory row")
	}

	return &CreateOutput{Row: input.Row}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errRowIDEmpty)
	}

	result, err := r.client.Get(ctx, rowKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("inventory row with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get inventory row")
	}

	var row ashfall.InventoryItem
	if err := json.Unmarshal([]byte(result), &row); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal inventory row")
	}

	return &GetOutput{Row: &row}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Row == nil {
		return nil, errors.InvalidArgument(errRowNil)
	}
	if input.Row.ID == "" {
		return nil, errors.InvalidArgument(errRowIDEmpty)
	}

	existingOut, err := r.Get(ctx, GetInput{ID: input.Row.ID})
	if err != nil {
		return nil, err
	}

	input.Row.CreatedAt = existingOut.Row.CreatedAt
	input.Row.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.Row)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal inventory row")
	}

	if err := r.client.Set(ctx, rowKeyPrefix+input.Row.ID, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update inventory row")
	}

	return &UpdateOutput{Row: input.Row}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errRowIDEmpty)
	}

	getOutput, err := r.Get(ctx, GetInput(input))
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, rowKeyPrefix+input.ID)
	pipe.SRem(ctx, characterIndexPrefix+getOutput.Row.CharacterID, input.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete inventory row")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByCharacterID(
	ctx context.Context,
	input ListByCharacterIDInput,
) (*ListByCharacterIDOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharIDEmpty)
	}

	indexKey := characterIndexPrefix + input.CharacterID
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read inventory index")
	}

	rows := make([]*ashfall.InventoryItem, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "inventory row missing, cleaning up index",
					"row_id", id,
					"character_id", input.CharacterID)
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get inventory row %s", id)
		}
		rows = append(rows, getOutput.Row)
	}

	return &ListByCharacterIDOutput{Rows: rows}, nil
}
