package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher fans ledger events out over Redis pub/sub so every API
// instance can push them to its own websocket clients.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher returns publish failures to the caller, which logs them.
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, stream string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	if err := p.client.Publish(ctx, p.prefix+stream, data).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, stream, err)
	}
	return nil
}

type RedisSubscriber struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisSubscriber(client *redis.Client, prefix string, log *zap.Logger) *RedisSubscriber {
	return &RedisSubscriber{client: client, prefix: prefix, log: log}
}

// Subscribe returns once the subscription is confirmed; handler runs on a
// background goroutine until ctx is done.
func (s *RedisSubscriber) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	pubsub := s.client.Subscribe(ctx, s.prefix+stream)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", stream, err)
	}
	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					s.log.Error("failed to unmarshal event", zap.String("stream", stream), zap.Error(err))
					continue
				}
				handler(event)
			}
		}
	}()

	return nil
}
