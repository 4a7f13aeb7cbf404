package encounters

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
	encounterKeyPrefix     = "encounter:"
	allIndexKey            = "encounter:all"
	participantKeyPrefix   = "participant:"
	participantIndexPrefix = "encounter:participants:"

	errEncounterNil        = "encounter cannot be nil"
	errEncounterIDEmpty    = "encounter ID cannot be empty"
	errParticipantNil      = "participant cannot be nil"
	errParticipantIDEmpty  = "participant ID cannot be empty"
	errParticipantNoParent = "participant encounter ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis encounter repository.
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

// NewRedis creates a new Redis-backed encounter repository
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
	if input.Encounter == nil {
		return nil, errors.InvalidArgument(errEncounterNil)
	}
	if input.Encounter.ID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	key := encounterKeyPrefix + input.Encounter.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("encounter with ID %s already exists", input.Encounter.ID)
	}

	now := r.clock.Now().Unix()
	input.Encounter.CreatedAt = now
	input.Encounter.UpdatedAt = now

	data, err := json.Marshal(input.Encounter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal encounter")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, allIndexKey, input.Encounter.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create encounter")
	}

	return &CreateOutput{Encounter: input.Encounter}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	result, err := r.client.Get(ctx, encounterKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("encounter with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get encounter")
	}

	var enc ashfall.Encounter
	if err := json.Unmarshal([]byte(result), &enc); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal encounter")
	}

	return &GetOutput{Encounter: &enc}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Encounter == nil {
		return nil, errors.InvalidArgument(errEncounterNil)
	}
	if input.Encounter.ID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	existingOut, err := r.Get(ctx, GetInput{ID: input.Encounter.ID})
	if err != nil {
		return nil, err
	}

	input.Encounter.CreatedAt = existingOut.Encounter.CreatedAt
	input.Encounter.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.Encounter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal encounter")
	}

	if err := r.client.Set(ctx, encounterKeyPrefix+input.Encounter.ID, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update encounter")
	}

	return &UpdateOutput{Encounter: input.Encounter}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	if _, err := r.Get(ctx, GetInput(input)); err != nil {
		return nil, err
	}

	// Cascade to the participant rows before dropping the encounter
	participantIndex := participantIndexPrefix + input.ID
	participantIDs, err := r.client.SMembers(ctx, participantIndex).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list participants for cascade")
	}

	pipe := r.client.TxPipeline()
	for _, pid := range participantIDs {
		pipe.Del(ctx, participantKeyPrefix+pid)
	}
	pipe.Del(ctx, participantIndex)
	pipe.Del(ctx, encounterKeyPrefix+input.ID)
	pipe.SRem(ctx, allIndexKey, input.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete encounter")
	}

	return &DeleteOutput{ParticipantsRemoved: len(participantIDs)}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, allIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read encounter index")
	}

	encounters := make([]*ashfall.Encounter, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "encounter missing, cleaning up index", "encounter_id", id)
				r.client.SRem(ctx, allIndexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get encounter %s", id)
		}
		encounters = append(encounters, getOutput.Encounter)
	}

	return &ListOutput{Encounters: encounters}, nil
}

func (r *redisRepository) AddParticipant(
	ctx context.Context,
	input AddParticipantInput,
) (*AddParticipantOutput, error) {
	if input.Participant == nil {
		return nil, errors.InvalidArgument(errParticipantNil)
	}
	if input.Participant.ID == "" {
		return nil, errors.InvalidArgument(errParticipantIDEmpty)
	}
	if input.Participant.EncounterID == "" {
		return nil, errors.InvalidArgument(errParticipantNoParent)
	}

	now := r.clock.Now().Unix()
	input.Participant.CreatedAt = now
	input.Participant.UpdatedAt = now

	data, err := json.Marshal(input.Participant)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal participant")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, participantKeyPrefix+input.Participant.ID, data, 0)
	pipe.SAdd(ctx, participantIndexPrefix+input.Participant.EncounterID, input.Participant.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to add participant")
	}

	return &AddParticipantOutput{Participant: input.Participant}, nil
}

func (r *redisRepository) GetParticipant(
	ctx context.Context,
	input GetParticipantInput,
) (*GetParticipantOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errParticipantIDEmpty)
	}

	result, err := r.client.Get(ctx, participantKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("participant with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get participant")
	}

	var p ashfall.Participant
	if err := json.Unmarshal([]byte(result), &p); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal participant")
	}

	return &GetParticipantOutput{Participant: &p}, nil
}

func (r *redisRepository) UpdateParticipant(
	ctx context.Context,
	input UpdateParticipantInput,
) (*UpdateParticipantOutput, error) {
	if input.Participant == nil {
		return nil, errors.InvalidArgument(errParticipantNil)
	}
	if input.Participant.ID == "" {
		return nil, errors.InvalidArgument(errParticipantIDEmpty)
	}

	existingOut, err := r.GetParticipant(ctx, GetParticipantInput{ID: input.Participant.ID})
	if err != nil {
		return nil, err
	}

	input.Participant.CreatedAt = existingOut.Participant.CreatedAt
	input.Participant.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.Participant)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal participant")
	}

	if err := r.client.Set(ctx, participantKeyPrefix+input.Participant.ID, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update participant")
	}

	return &UpdateParticipantOutput{Participant: input.Participant}, nil
}

func (r *redisRepository) RemoveParticipant(
	ctx context.Context,
	input RemoveParticipantInput,
) (*RemoveParticipantOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errParticipantIDEmpty)
	}

	getOutput, err := r.GetParticipant(ctx, GetParticipantInput(input))
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, participantKeyPrefix+input.ID)
	pipe.SRem(ctx, participantIndexPrefix+getOutput.Participant.EncounterID, input.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to remove participant")
	}

	return &RemoveParticipantOutput{}, nil
}

func (r *redisRepository) ListParticipants(
	ctx context.Context,
	input ListParticipantsInput,
) (*ListParticipantsOutput, error) {
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	indexKey := participantIndexPrefix + input.EncounterID
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read participant index")
	}

	participants := make([]*ashfall.Participant, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.GetParticipant(ctx, GetParticipantInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "participant missing, cleaning up index",
					"participant_id", id,
					"encounter_id", input.EncounterID)
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get participant %s", id)
		}
		participants = append(participants, getOutput.Participant)
	}

	return &ListParticipantsOutput{Participants: participants}, nil
}
