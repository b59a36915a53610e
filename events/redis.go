package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher mirrors addon events onto a Redis pub/sub channel so other
// back-office instances can refresh their views.
type RedisPublisher struct {
	Client  *redis.Client
	Channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{Client: client, Channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event AddonEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode addon event: %w", err)
	}
	if err := p.Client.Publish(ctx, p.Channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", p.Channel, err)
	}
	return nil
}
