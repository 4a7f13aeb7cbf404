package abilities

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
	abilityKeyPrefix    = "ability:"
	abilityIndexKey     = "ability:all"
	grantKeyPrefix      = "ability_grant:"
	grantIndexKey       = "ability_grant:all"
	grantCharIndexPfx   = "ability_grant:character:"
	grantSourceIndexPfx = "ability_grant:source:"
	errAbilityNil       = "ability cannot be nil"
	errAbilityIDEmpty   = "ability ID cannot be empty"
	errGrantNil         = "grant cannot be nil"
	errGrantIDEmpty     = "grant ID cannot be empty"
	errGrantNoCharacter = "grant character ID cannot be empty"
	errCharIDEmpty      = "character ID cannot be empty"
	errSourceIDEmpty    = "source ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis ability repository.
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

// NewRedis creates a new Redis-backed ability repository
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
	if input.Ability == nil {
		return nil, errors.InvalidArgument(errAbilityNil)
	}
	if input.Ability.ID == "" {
		return nil, errors.InvalidArgument(errAbilityIDEmpty)
	}

	key := abilityKeyPrefix + input.Ability.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("ability with ID %s already exists", input.Ability.ID)
	}

	now := r.clock.Now().Unix()
	input.Ability.CreatedAt = now
	input.Ability.UpdatedAt = now

	data, err := json.Marshal(input.Ability)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal ability")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, abilityIndexKey, input.Ability.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create ability")
	}

	return &CreateOutput{Ability: input.Ability}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errAbilityIDEmpty)
	}

	result, err := r.client.Get(ctx, abilityKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("ability with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get ability")
	}

	var ability ashfall.Ability
	if err := json.Unmarshal([]byte(result), &ability); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal ability")
	}

	return &GetOutput{Ability: &ability}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Ability == nil {
		return nil, errors.InvalidArgument(errAbilityNil)
	}
	if input.Ability.ID == "" {
		return nil, errors.InvalidArgument(errAbilityIDEmpty)
	}

	existingOut, err := r.Get(ctx, GetInput{ID: input.Ability.ID})
	if err != nil {
		return nil, err
	}

	input.Ability.CreatedAt = existingOut.Ability.CreatedAt
	input.Ability.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.Ability)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal ability")
	}

	if err := r.client.Set(ctx, abilityKeyPrefix+input.Ability.ID, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update ability")
	}

	return &UpdateOutput{Ability: input.Ability}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errAbilityIDEmpty)
	}

	if _, err := r.Get(ctx, GetInput(input)); err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, abilityKeyPrefix+input.ID)
	pipe.SRem(ctx, abilityIndexKey, input.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete ability")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, abilityIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read ability index")
	}

	result := make([]*ashfall.Ability, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "ability missing, cleaning up index", "ability_id", id)
				r.client.SRem(ctx, abilityIndexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get ability %s", id)
		}
		result = append(result, getOutput.Ability)
	}

	return &ListOutput{Abilities: result}, nil
}

func (r *redisRepository) CreateGrant(ctx context.Context, input CreateGrantInput) (*CreateGrantOutput, error) {
	if input.Grant == nil {
		return nil, errors.InvalidArgument(errGrantNil)
	}
	if input.Grant.ID == "" {
		return nil, errors.InvalidArgument(errGrantIDEmpty)
	}
	if input.Grant.CharacterID == "" {
		return nil, errors.InvalidArgument(errGrantNoCharacter)
	}

	key := grantKeyPrefix + input.Grant.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("grant with ID %s already exists", input.Grant.ID)
	}

	now := r.clock.Now().Unix()
	input.Grant.CreatedAt = now
	input.Grant.UpdatedAt = now

	data, err := json.Marshal(input.Grant)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal grant")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, grantIndexKey, input.Grant.ID)
	pipe.SAdd(ctx, grantCharIndexPfx+input.Grant.CharacterID, input.Grant.ID)
	if input.Grant.SourceID != "" {
		pipe.SAdd(ctx, grantSourceIndexPfx+input.Grant.SourceID, input.Grant.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create grant")
	}

	return &CreateGrantOutput{Grant: input.Grant}, nil
}

func (r *redisRepository) GetGrant(ctx context.Context, input GetGrantInput) (*GetGrantOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errGrantIDEmpty)
	}

	result, err := r.client.Get(ctx, grantKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("grant with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get grant")
	}

	var grant ashfall.AbilityGrant
	if err := json.Unmarshal([]byte(result), &grant); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal grant")
	}

	return &GetGrantOutput{Grant: &grant}, nil
}

func (r *redisRepository) UpdateGrant(ctx context.Context, input UpdateGrantInput) (*UpdateGrantOutput, error) {
	if input.Grant == nil {
		return nil, errors.InvalidArgument(errGrantNil)
	}
	if input.Grant.ID == "" {
		return nil, errors.InvalidArgument(errGrantIDEmpty)
	}

	existingOut, err := r.GetGrant(ctx, GetGrantInput{ID: input.Grant.ID})
	if err != nil {
		return nil, err
	}

	input.Grant.CreatedAt = existingOut.Grant.CreatedAt
	input.Grant.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.Grant)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal grant")
	}

	if err := r.client.Set(ctx, grantKeyPrefix+input.Grant.ID, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update grant")
	}

	return &UpdateGrantOutput{Grant: input.Grant}, nil
}

func (r *redisRepository) DeleteGrant(ctx context.Context, input DeleteGrantInput) (*DeleteGrantOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errGrantIDEmpty)
	}

	getOutput, err := r.GetGrant(ctx, GetGrantInput(input))
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, grantKeyPrefix+input.ID)
	pipe.SRem(ctx, grantIndexKey, input.ID)
	pipe.SRem(ctx, grantCharIndexPfx+getOutput.Grant.CharacterID, input.ID)
	if getOutput.Grant.SourceID != "" {
		pipe.SRem(ctx, grantSourceIndexPfx+getOutput.Grant.SourceID, input.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete grant")
	}

	return &DeleteGrantOutput{}, nil
}

func (r *redisRepository) ListGrantsByCharacterID(
	ctx context.Context,
	input ListGrantsByCharacterIDInput,
) (*ListGrantsByCharacterIDOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharIDEmpty)
	}

	grants, err := r.listGrantsByIndex(ctx, grantCharIndexPfx+input.CharacterID)
	if err != nil {
		return nil, err
	}
	return &ListGrantsByCharacterIDOutput{Grants: grants}, nil
}

func (r *redisRepository) ListGrantsBySource(
	ctx context.Context,
	input ListGrantsBySourceInput,
) (*ListGrantsBySourceOutput, error) {
	if input.SourceID == "" {
		return nil, errors.InvalidArgument(errSourceIDEmpty)
	}

	grants, err := r.listGrantsByIndex(ctx, grantSourceIndexPfx+input.SourceID)
	if err != nil {
		return nil, err
	}
	return &ListGrantsBySourceOutput{Grants: grants}, nil
}

func (r *redisRepository) ListAllGrants(
	ctx context.Context,
	_ ListAllGrantsInput,
) (*ListAllGrantsOutput, error) {
	grants, err := r.listGrantsByIndex(ctx, grantIndexKey)
	if err != nil {
		return nil, err
	}
	return &ListAllGrantsOutput{Grants: grants}, nil
}

func (r *redisRepository) listGrantsByIndex(ctx context.Context, indexKey string) ([]*ashfall.AbilityGrant, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read index %s", indexKey)
	}

	grants := make([]*ashfall.AbilityGrant, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.GetGrant(ctx, GetGrantInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "grant missing, cleaning up index",
					"grant_id", id,
					"index_key", indexKey)
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get grant %s", id)
		}
		grants = append(grants, getOutput.Grant)
	}

	return grants, nil
}
