package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ashfall-rpg/gm-api/internal/errors"
	redisclient "github.com/ashfall-rpg/gm-api/internal/redis"
)

const channelPrefix = "changes:"

type event struct {
	Collection string
	RecordID   string
}

type redisBus struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis change feed.
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

// NewRedis creates a Redis Pub/Sub backed change feed
func NewRedis(cfg *RedisConfig) (Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisBus{client: cfg.Client}, nil
}

func (b *redisBus) Publish(ctx context.Context, collection, recordID string) error {
	if collection == "" {
		return errors.InvalidArgument("collection cannot be empty")
	}

	payload, err := json.Marshal(event{Collection: collection, RecordID: recordID})
	if err != nil {
		return errors.Wrapf(err, "failed to marshal change event")
	}

	if err := b.client.Publish(ctx, channelPrefix+collection, payload).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish change event")
	}

	return nil
}

func (b *redisBus) Subscribe(ctx context.Context, collection string, handler Handler) (func(), error) {
	if collection == "" {
		return nil, errors.InvalidArgument("collection cannot be empty")
	}
	if handler == nil {
		return nil, errors.InvalidArgument("handler cannot be nil")
	}

	sub := b.client.Subscribe(ctx, channelPrefix+collection)

	// Force the subscription to be established before returning so a
	// publish right after Subscribe is not lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, errors.Wrapf(err, "failed to subscribe to %s", collection)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range sub.Channel() {
			var ev event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("dropping malformed change event",
					"channel", msg.Channel,
					"error", err)
				continue
			}
			handler(ev.Collection, ev.RecordID)
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			_ = sub.Close()
			<-done
		})
	}

	return unsubscribe, nil
}
