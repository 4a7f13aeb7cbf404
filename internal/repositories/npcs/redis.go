package npcs

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
	npcKeyPrefix = "npc:"
	allIndexKey  = "npc:all"

	errNPCNil     = "npc cannot be nil"
	errNPCIDEmpty = "npc ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis NPC repository.
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

// NewRedis creates a new Redis-backed NPC repository
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
	if input.NPC == nil {
		return nil, errors.InvalidArgument(errNPCNil)
	}
	if input.NPC.ID == "" {
		return nil, errors.InvalidArgument(errNPCIDEmpty)
	}

	key := npcKeyPrefix + input.NPC.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("npc with ID %s already exists", input.NPC.ID)
	}

	now := r.clock.Now().Unix()
	input.NPC.CreatedAt = now
	input.NPC.UpdatedAt = now

	data, err := json.Marshal(input.NPC)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal npc")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, allIndexKey, input.NPC.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create npc")
	}

	return &CreateOutput{NPC: input.NPC}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errNPCIDEmpty)
	}

	result, err := r.client.Get(ctx, npcKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("npc with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get npc")
	}

	var npc ashfall.NPC
	if err := json.Unmarshal([]byte(result), &npc); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal npc")
	}

	return &GetOutput{NPC: &npc}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.NPC == nil {
		return nil, errors.InvalidArgument(errNPCNil)
	}
	if input.NPC.ID == "" {
		return nil, errors.InvalidArgument(errNPCIDEmpty)
	}

	existingOut, err := r.Get(ctx, GetInput{ID: input.NPC.ID})
	if err != nil {
		return nil, err
	}

	input.NPC.CreatedAt = existingOut.NPC.CreatedAt
	input.NPC.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.NPC)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal npc")
	}

	if err := r.client.Set(ctx, npcKeyPrefix+input.NPC.ID, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update npc")
	}

	return &UpdateOutput{NPC: input.NPC}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errNPCIDEmpty)
	}

	if _, err := r.Get(ctx, GetInput(input)); err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, npcKeyPrefix+input.ID)
	pipe.SRem(ctx, allIndexKey, input.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete npc")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, allIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read npc index")
	}

	npcs := make([]*ashfall.NPC, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "npc missing, cleaning up index", "npc_id", id)
				r.client.SRem(ctx, allIndexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get npc %s", id)
		}
		npcs = append(npcs, getOutput.NPC)
	}

	return &ListOutput{NPCs: npcs}, nil
}
