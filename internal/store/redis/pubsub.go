package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PubSub carries billing events between the service and websocket clients.
type PubSub struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &PubSub{client: client}, nil
}

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

// Ping checks the connection for health reporting.
func (ps *PubSub) Ping(ctx context.Context) error {
	if err := ps.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Ping: %w", err)
	}
	return nil
}

// PublishJSON marshals v once and publishes it to every listed channel in a
// single pipelined round trip.
func (ps *PubSub) PublishJSON(ctx context.Context, v any, channels ...string) error {
	if len(channels) == 0 {
		return nil
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis.PubSub.PublishJSON: marshal: %w", err)
	}

	_, err = ps.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, ch := range channels {
			pipe.Publish(ctx, ch, payload)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis.PubSub.PublishJSON: %w", err)
	}
	return nil
}

// Subscribe streams payloads from channel until ctx is done or cleanup is
// called. The returned channel is closed when the stream ends.
func (ps *PubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	sub := ps.client.Subscribe(ctx, channel)

	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.Subscribe: receive confirmation: %w", err)
	}

	out := make(chan []byte, 64)
	redisCh := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}

// BillingChannel is the Redis channel carrying every billing event.
const BillingChannel = "billing"

// TenantChannel returns the Redis channel name for events of one tenant.
func TenantChannel(tenantID string) string {
	return "tenant:" + tenantID
}
