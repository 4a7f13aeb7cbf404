package lock

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/ashfall-rpg/gm-api/internal/errors"
	"github.com/ashfall-rpg/gm-api/internal/pkg/clock"
	redisclient "github.com/ashfall-rpg/gm-api/internal/redis"
)

const lockKey = "campaign:lock"

type lockState struct {
	Locked    bool
	Reason    *string
	UpdatedAt int64
}

type redisLocker struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis locker.
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

// NewRedis creates a new Redis-backed locker
func NewRedis(cfg *RedisConfig) (Locker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisLocker{client: cfg.Client, clock: c}, nil
}

func (l *redisLocker) SetLocked(ctx context.Context, input SetLockedInput) (*SetLockedOutput, error) {
	state := lockState{
		Locked:    input.Locked,
		Reason:    input.Reason,
		UpdatedAt: l.clock.Now().Unix(),
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal lock state")
	}

	if err := l.client.Set(ctx, lockKey, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to write lock state")
	}

	return &SetLockedOutput{}, nil
}

func (l *redisLocker) GetLocked(ctx context.Context, _ GetLockedInput) (*GetLockedOutput, error) {
	result, err := l.client.Get(ctx, lockKey).Result()
	if err != nil {
		// Absent key means the campaign has never been locked
		if err == redis.Nil {
			return &GetLockedOutput{Locked: false}, nil
		}
		return nil, errors.Wrapf(err, "failed to read lock state")
	}

	var state lockState
	if err := json.Unmarshal([]byte(result), &state); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal lock state")
	}

	return &GetLockedOutput{Locked: state.Locked, Reason: state.Reason}, nil
}
