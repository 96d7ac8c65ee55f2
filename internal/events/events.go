package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fintrack-app/apiserver/config"
)

// ChannelUserRegistered carries signup events for downstream consumers
// such as the welcome-mail worker.
const ChannelUserRegistered = "user.registered"

// UserRegistered is published once per successful registration.
type UserRegistered struct {
	UserID       int       `json:"user_id"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Handler processes a decoded event. Return an error to signal a
// retry/nack.
type Handler func(ctx context.Context, event UserRegistered) error

// Broker defines the broker-agnostic operations the bus needs.
type Broker interface {
	Publish(ctx context.Context, channel string, data []byte) (string, error)
	Subscribe(ctx context.Context, channel string, handle func(ctx context.Context, data []byte) error) error
	Close() error
}

// Bus publishes and consumes typed signup events over a Broker.
type Bus struct {
	broker Broker
}

// NewBus wraps the provided broker.
func NewBus(broker Broker) *Bus {
	return &Bus{broker: broker}
}

// NewBroker constructs the broker selected by config. An empty backend
// returns nil, which disables event publishing.
func NewBroker(ctx context.Context, cfg config.EventsConfig) (Broker, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		return NewRabbitMQBroker(cfg.RabbitMQ)
	case "pubsub":
		return NewPubSubBroker(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// PublishUserRegistered sends a signup event and returns the broker
// message ID.
func (b *Bus) PublishUserRegistered(ctx context.Context, event UserRegistered) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return b.broker.Publish(ctx, ChannelUserRegistered, data)
}

// SubscribeUserRegistered consumes signup events until ctx is done.
func (b *Bus) SubscribeUserRegistered(ctx context.Context, handler Handler) error {
	return b.broker.Subscribe(ctx, ChannelUserRegistered, func(ctx context.Context, data []byte) error {
		var event UserRegistered
		if err := json.Unmarshal(data, &event); err != nil {
			// Undecodable payloads are dropped, not retried.
			return nil
		}
		return handler(ctx, event)
	})
}

// Close closes the underlying broker.
func (b *Bus) Close() error {
	return b.broker.Close()
}
